package attr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// defaultTolerance is the relative tolerance used by float equality when
// none is configured. Values pass through a string round trip, so bitwise
// equality is too strict.
const defaultTolerance = 1e-8

// FloatKind is the runtime behavior of floating-point attributes. It
// carries range bounds, a NaN policy and a relative equality tolerance.
type FloatKind struct {
	Min, Max *float64 // Optional inclusive bounds.
	NaN      bool     // Whether NaN is a valid value.
	Tol      float64  // Relative tolerance; 0 means defaultTolerance.
}

// Name returns the kind name.
func (*FloatKind) Name() string { return "float" }

// Clean coerces numbers and numeric strings.
func (*FloatKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot clean %q as float", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot clean %T as float", raw)
	}
}

// Validate checks the value type, the NaN policy and the bounds.
func (k *FloatKind) Validate(v any) error {
	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("expected float, got %T", v)
	}
	if math.IsNaN(f) {
		if !k.NaN {
			return fmt.Errorf("NaN is not allowed")
		}
		return nil
	}
	if k.Min != nil && f < *k.Min {
		return fmt.Errorf("value %v below minimum %v", f, *k.Min)
	}
	if k.Max != nil && f > *k.Max {
		return fmt.Errorf("value %v above maximum %v", f, *k.Max)
	}
	return nil
}

// Serialize renders the shortest exact decimal form.
func (*FloatKind) Serialize(v any) string {
	f, _ := v.(float64)
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Deserialize parses the decimal form.
func (*FloatKind) Deserialize(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as float", s)
	}
	return f, nil
}

// ToBuiltin returns the float unchanged.
func (*FloatKind) ToBuiltin(v any) any { return v }

// FromBuiltin accepts any numeric representation.
func (k *FloatKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal reports tolerant equality: exact matches and NaN==NaN are equal,
// otherwise the relative difference must stay within the tolerance.
func (k *FloatKind) Equal(a, b any) bool {
	x, ok1 := a.(float64)
	y, ok2 := b.(float64)
	if !ok1 || !ok2 {
		return a == b
	}
	if x == y || (math.IsNaN(x) && math.IsNaN(y)) {
		return true
	}
	tol := k.Tol
	if tol == 0 {
		tol = defaultTolerance
	}
	return math.Abs(x-y) < tol*math.Max(math.Abs(x), math.Abs(y))
}

// FloatBuilder builds float attribute descriptors.
type FloatBuilder struct {
	desc *Descriptor
	kind *FloatKind
}

// Float returns a new float attribute builder.
func Float(name string) *FloatBuilder {
	k := &FloatKind{}
	return &FloatBuilder{desc: &Descriptor{Name: name, Kind: k}, kind: k}
}

// Min sets the inclusive lower bound.
func (b *FloatBuilder) Min(f float64) *FloatBuilder {
	b.kind.Min = &f
	return b
}

// Max sets the inclusive upper bound.
func (b *FloatBuilder) Max(f float64) *FloatBuilder {
	b.kind.Max = &f
	return b
}

// Range sets both bounds.
func (b *FloatBuilder) Range(lo, hi float64) *FloatBuilder {
	return b.Min(lo).Max(hi)
}

// Positive requires values greater than zero.
func (b *FloatBuilder) Positive() *FloatBuilder {
	return b.Min(math.SmallestNonzeroFloat64)
}

// NonNegative requires values of at least zero.
func (b *FloatBuilder) NonNegative() *FloatBuilder {
	return b.Min(0)
}

// AllowNaN admits NaN as a valid value.
func (b *FloatBuilder) AllowNaN() *FloatBuilder {
	b.kind.NaN = true
	return b
}

// Tolerance sets the relative equality tolerance.
func (b *FloatBuilder) Tolerance(t float64) *FloatBuilder {
	if t < 0 && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("attr: negative tolerance for %q", b.desc.Name)
	}
	b.kind.Tol = t
	return b
}

// Unique requires the value to be unique across the live population.
func (b *FloatBuilder) Unique() *FloatBuilder {
	b.desc.Unique = true
	return b
}

// Default sets the default value.
func (b *FloatBuilder) Default(f float64) *FloatBuilder {
	b.desc.Default = f
	return b
}

// Optional allows the value to be absent.
func (b *FloatBuilder) Optional() *FloatBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *FloatBuilder) Comment(c string) *FloatBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *FloatBuilder) Descriptor() *Descriptor {
	if b.desc.Err == nil && b.kind.Min != nil && b.kind.Max != nil && *b.kind.Min > *b.kind.Max {
		b.desc.Err = fmt.Errorf("attr: empty range for %q", b.desc.Name)
	}
	return b.desc
}

// IntKind is the runtime behavior of integer attributes.
type IntKind struct {
	Min, Max *int64 // Optional inclusive bounds.
}

// Name returns the kind name.
func (*IntKind) Name() string { return "int" }

// Clean coerces integers, integral floats and numeric strings.
func (*IntKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("value %v is not integral", v)
		}
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("cannot clean %q as int", v)
		}
		return int64(f), nil
	default:
		return nil, fmt.Errorf("cannot clean %T as int", raw)
	}
}

// Validate checks the value type and the bounds.
func (k *IntKind) Validate(v any) error {
	n, ok := v.(int64)
	if !ok {
		return fmt.Errorf("expected int, got %T", v)
	}
	if k.Min != nil && n < *k.Min {
		return fmt.Errorf("value %d below minimum %d", n, *k.Min)
	}
	if k.Max != nil && n > *k.Max {
		return fmt.Errorf("value %d above maximum %d", n, *k.Max)
	}
	return nil
}

// Serialize renders the decimal form.
func (*IntKind) Serialize(v any) string {
	n, _ := v.(int64)
	return strconv.FormatInt(n, 10)
}

// Deserialize parses the decimal form.
func (k *IntKind) Deserialize(s string) (any, error) { return k.Clean(s) }

// ToBuiltin returns the integer unchanged.
func (*IntKind) ToBuiltin(v any) any { return v }

// FromBuiltin accepts any integral representation.
func (k *IntKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal reports exact equality.
func (*IntKind) Equal(a, b any) bool { return a == b }

// IntBuilder builds integer attribute descriptors.
type IntBuilder struct {
	desc *Descriptor
	kind *IntKind
}

// Int returns a new integer attribute builder.
func Int(name string) *IntBuilder {
	k := &IntKind{}
	return &IntBuilder{desc: &Descriptor{Name: name, Kind: k}, kind: k}
}

// Min sets the inclusive lower bound.
func (b *IntBuilder) Min(n int64) *IntBuilder {
	b.kind.Min = &n
	return b
}

// Max sets the inclusive upper bound.
func (b *IntBuilder) Max(n int64) *IntBuilder {
	b.kind.Max = &n
	return b
}

// Range sets both bounds.
func (b *IntBuilder) Range(lo, hi int64) *IntBuilder {
	return b.Min(lo).Max(hi)
}

// Positive requires values greater than zero.
func (b *IntBuilder) Positive() *IntBuilder {
	return b.Min(1)
}

// NonNegative requires values of at least zero.
func (b *IntBuilder) NonNegative() *IntBuilder {
	return b.Min(0)
}

// Unique requires the value to be unique across the live population.
func (b *IntBuilder) Unique() *IntBuilder {
	b.desc.Unique = true
	return b
}

// Default sets the default value.
func (b *IntBuilder) Default(n int64) *IntBuilder {
	b.desc.Default = n
	return b
}

// Optional allows the value to be absent.
func (b *IntBuilder) Optional() *IntBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *IntBuilder) Comment(c string) *IntBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *IntBuilder) Descriptor() *Descriptor {
	if b.desc.Err == nil && b.kind.Min != nil && b.kind.Max != nil && *b.kind.Min > *b.kind.Max {
		b.desc.Err = fmt.Errorf("attr: empty range for %q", b.desc.Name)
	}
	return b.desc
}
