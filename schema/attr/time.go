package attr

import (
	"fmt"
	"strings"
	"time"
)

// TimeKind is the runtime behavior of date/time attributes. The layout
// controls the serialized form: RFC 3339 for timestamps, "2006-01-02" for
// dates.
type TimeKind struct {
	Layout string
}

// Name returns the kind name.
func (k *TimeKind) Name() string {
	if k.Layout == time.DateOnly {
		return "date"
	}
	return "time"
}

// Clean coerces time values and strings in the kind's layout.
func (k *TimeKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(k.Layout, strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot clean %q as %s", v, k.Name())
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot clean %T as %s", raw, k.Name())
	}
}

// Validate checks the value type.
func (k *TimeKind) Validate(v any) error {
	if _, ok := v.(time.Time); !ok {
		return fmt.Errorf("expected %s, got %T", k.Name(), v)
	}
	return nil
}

// Serialize renders the layout form.
func (k *TimeKind) Serialize(v any) string {
	t, _ := v.(time.Time)
	return t.Format(k.Layout)
}

// Deserialize parses the layout form.
func (k *TimeKind) Deserialize(s string) (any, error) { return k.Clean(s) }

// ToBuiltin renders the layout form, keeping the tree JSON-compatible.
func (k *TimeKind) ToBuiltin(v any) any { return k.Serialize(v) }

// FromBuiltin accepts layout strings and time values.
func (k *TimeKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal compares instants, ignoring location.
func (*TimeKind) Equal(a, b any) bool {
	x, ok1 := a.(time.Time)
	y, ok2 := b.(time.Time)
	if !ok1 || !ok2 {
		return a == b
	}
	return x.Equal(y)
}

// TimeBuilder builds date/time attribute descriptors.
type TimeBuilder struct {
	desc *Descriptor
}

// Time returns a new timestamp attribute builder (RFC 3339 serialization).
func Time(name string) *TimeBuilder {
	return &TimeBuilder{desc: &Descriptor{Name: name, Kind: &TimeKind{Layout: time.RFC3339}}}
}

// Date returns a new date attribute builder ("2006-01-02" serialization).
func Date(name string) *TimeBuilder {
	return &TimeBuilder{desc: &Descriptor{Name: name, Kind: &TimeKind{Layout: time.DateOnly}}}
}

// Default sets the default value.
func (b *TimeBuilder) Default(t time.Time) *TimeBuilder {
	b.desc.Default = t
	return b
}

// Optional allows the value to be absent.
func (b *TimeBuilder) Optional() *TimeBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *TimeBuilder) Comment(c string) *TimeBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *TimeBuilder) Descriptor() *Descriptor { return b.desc }
