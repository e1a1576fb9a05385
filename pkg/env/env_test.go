package env

import "testing"

func TestGetFallback(t *testing.T) {
	t.Setenv("PIZZERIA_TEST_ENV_GET", "")
	if got := Get("PIZZERIA_TEST_ENV_GET", "json"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestFirstPicksEarliestSetKey(t *testing.T) {
	t.Setenv("PIZZERIA_TEST_A", " ")
	t.Setenv("PIZZERIA_TEST_B", "8080")
	if got := First("3131", "PIZZERIA_TEST_A", "PIZZERIA_TEST_B"); got != "8080" {
		t.Fatalf("expected 8080, got %q", got)
	}
	if got := First("3131", "PIZZERIA_TEST_MISSING"); got != "3131" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
