// Package amount implements the bounded quantity widget used by menu items
// and cart lines.
package amount

import (
	"regexp"
	"strconv"

	"github.com/angelmondragon/pizzeria/internal/notify"
)

// Settings bounds a counter. Default is the value a counter starts from
// before its initial raw input is applied.
type Settings struct {
	Default int
	Min     int
	Max     int
}

// DefaultSettings matches the storefront's stock quantity widget.
var DefaultSettings = Settings{Default: 1, Min: 1, Max: 9}

// Change describes an accepted value transition.
type Change struct {
	Previous int
	Current  int
}

// Counter is an integer that always satisfies Min <= value <= Max.
type Counter struct {
	settings Settings
	value    int
	input    string
	changed  notify.Channel[Change]
}

// New builds a counter from raw external input. Malformed or out-of-range
// input leaves the counter at the (clamped) default.
func New(initialRaw string, settings Settings) *Counter {
	if settings.Min > settings.Max {
		settings.Min, settings.Max = settings.Max, settings.Min
	}
	c := &Counter{
		settings: settings,
		value:    clamp(settings.Default, settings.Min, settings.Max),
	}
	c.SetValue(initialRaw)
	return c
}

// NewWithValue is New for callers that already hold an integer.
func NewWithValue(initial int, settings Settings) *Counter {
	return New(strconv.Itoa(initial), settings)
}

// Value returns the current accepted value.
func (c *Counter) Value() int {
	return c.value
}

// Input returns the text echoed back to the input element.
func (c *Counter) Input() string {
	return c.input
}

// Settings returns the bounds the counter was created with.
func (c *Counter) Settings() Settings {
	return c.settings
}

// SetValue parses raw and accepts it when it is a new value inside the
// bounds, emitting a Change. Anything else is dropped silently and the
// previous value is echoed again.
func (c *Counter) SetValue(raw string) {
	if v, ok := parse(raw); ok && v != c.value && v >= c.settings.Min && v <= c.settings.Max {
		prev := c.value
		c.value = v
		c.input = strconv.Itoa(c.value)
		c.changed.Emit(Change{Previous: prev, Current: v})
		return
	}
	c.input = strconv.Itoa(c.value)
}

// Set is SetValue for an integer.
func (c *Counter) Set(v int) {
	c.SetValue(strconv.Itoa(v))
}

func (c *Counter) Increment() {
	c.Set(c.value + 1)
}

func (c *Counter) Decrement() {
	c.Set(c.value - 1)
}

// OnChange subscribes fn to accepted value changes.
func (c *Counter) OnChange(fn func(Change)) (unsubscribe func()) {
	return c.changed.Subscribe(fn)
}

var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]*)?$`)

// parse accepts a base-10 integer, optionally followed by a fractional part
// that is truncated. Surrounding whitespace makes the input malformed.
func parse(raw string) (int, bool) {
	if !integerPattern.MatchString(raw) {
		return 0, false
	}
	whole := raw
	for i := 0; i < len(raw); i++ {
		if raw[i] == '.' {
			whole = raw[:i]
			break
		}
	}
	v, err := strconv.Atoi(whole)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
