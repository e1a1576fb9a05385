package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	"github.com/angelmondragon/pizzeria/internal/storefront"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

type resolverFunc func(ctx context.Context, id string) (*storefront.Session, error)

func (fn resolverFunc) Get(ctx context.Context, id string) (*storefront.Session, error) {
	return fn(ctx, id)
}

func newTestSession(t *testing.T, id string) *storefront.Session {
	t.Helper()
	cat, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("empty catalog: %v", err)
	}
	s, err := storefront.NewSession(storefront.Params{
		ID:      id,
		Catalog: cat,
		Submitter: checkout.SubmitterFunc(func(context.Context, cart.OrderPayload) (checkout.Receipt, error) {
			return checkout.Receipt{}, nil
		}),
		Logger: logger.Nop(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionMiddleware(t *testing.T) {
	session := newTestSession(t, "sess-1")
	var asked []string
	resolver := resolverFunc(func(_ context.Context, id string) (*storefront.Session, error) {
		asked = append(asked, id)
		return session, nil
	})

	var got *storefront.Session
	handler := Session(resolver, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/menu", nil)
	req.Header.Set(SessionIDHeader, "  stale-id ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got != session {
		t.Fatalf("expected session in context")
	}
	if len(asked) != 1 || asked[0] != "stale-id" {
		t.Fatalf("expected trimmed header lookup, got %v", asked)
	}
	if h := rec.Header().Get(SessionIDHeader); h != "sess-1" {
		t.Fatalf("expected session id echoed, got %q", h)
	}
}

func TestSessionMiddlewareResolverError(t *testing.T) {
	resolver := resolverFunc(func(context.Context, string) (*storefront.Session, error) {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "too many storefront sessions")
	})
	called := false
	handler := Session(resolver, logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/storefront/menu", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if called {
		t.Fatalf("next handler must not run without a session")
	}
	if rec.Header().Get(SessionIDHeader) != "" {
		t.Fatalf("no session id should be echoed on failure")
	}
}
