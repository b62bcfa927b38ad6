package typegraph

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrAmbiguous is returned when a textual reference resolves to more
	// than one instance or to both an instance and a function.
	ErrAmbiguous = errors.New("typegraph: ambiguous reference")

	// ErrNotLinear is returned when an expression does not reduce to a
	// weighted sum of single instance references.
	ErrNotLinear = errors.New("typegraph: expression is not linear")

	// ErrConflict is returned when a mutation or merge would silently
	// overwrite an exclusive relationship slot.
	ErrConflict = errors.New("typegraph: conflicting relationship assignment")

	// ErrBadLookup is returned when a registry lookup does not name a
	// declared index key tuple.
	ErrBadLookup = errors.New("typegraph: lookup does not match a declared key tuple")
)

// AttributeError reports that a single attribute's clean, validate or
// serialize step failed. It carries the attribute identity and one or more
// messages.
type AttributeError struct {
	Entity   string   // Entity type name.
	Attr     string   // Attribute name.
	Messages []string // One or more failure messages.
}

// NewAttributeError returns a new AttributeError for the given attribute.
func NewAttributeError(entity, attr string, msgs ...string) *AttributeError {
	return &AttributeError{Entity: entity, Attr: attr, Messages: msgs}
}

// Error returns the error string.
func (e *AttributeError) Error() string {
	return fmt.Sprintf("typegraph: %s.%s: %s", e.Entity, e.Attr, strings.Join(e.Messages, "; "))
}

// Add appends a failure message.
func (e *AttributeError) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// IsAttributeError returns true if the error is an AttributeError.
func IsAttributeError(err error) bool {
	if err == nil {
		return false
	}
	var e *AttributeError
	return errors.As(err, &e)
}

// EntityError aggregates one instance's attribute errors, plus
// cross-instance uniqueness failures for a whole entity-type population.
type EntityError struct {
	Entity     string            // Entity type name.
	Instance   string            // Instance identity (primary value or internal id); empty for population-wide errors.
	Attributes []*AttributeError // Per-attribute failures.
	Uniqueness []string          // unique / unique_together violations across the population.
}

// NewEntityError returns a new EntityError for the given entity type.
func NewEntityError(entity, instance string) *EntityError {
	return &EntityError{Entity: entity, Instance: instance}
}

// Error returns the error string.
func (e *EntityError) Error() string {
	var sb strings.Builder
	if e.Instance != "" {
		fmt.Fprintf(&sb, "typegraph: %s[%s] invalid:", e.Entity, e.Instance)
	} else {
		fmt.Fprintf(&sb, "typegraph: %s invalid:", e.Entity)
	}
	for _, ae := range e.Attributes {
		fmt.Fprintf(&sb, "\n  %s: %s", ae.Attr, strings.Join(ae.Messages, "; "))
	}
	for _, u := range e.Uniqueness {
		fmt.Fprintf(&sb, "\n  %s", u)
	}
	return sb.String()
}

// Empty reports whether the error carries no failures.
func (e *EntityError) Empty() bool {
	return len(e.Attributes) == 0 && len(e.Uniqueness) == 0
}

// Append adds an attribute error to the report.
func (e *EntityError) Append(ae *AttributeError) {
	e.Attributes = append(e.Attributes, ae)
}

// IsEntityError returns true if the error is an EntityError.
func IsEntityError(err error) bool {
	if err == nil {
		return false
	}
	var e *EntityError
	return errors.As(err, &e)
}

// ExpressionErrorKind classifies expression failures.
type ExpressionErrorKind int

// Expression error kinds.
const (
	// ExprLexical reports an invalid lexical category or malformed token.
	ExprLexical ExpressionErrorKind = iota
	// ExprAmbiguity reports a reference that resolves to multiple parties.
	ExprAmbiguity
	// ExprUndefined reports a name that resolves to nothing.
	ExprUndefined
	// ExprEval reports a runtime evaluation failure.
	ExprEval
)

// String returns the kind name.
func (k ExpressionErrorKind) String() string {
	switch k {
	case ExprLexical:
		return "lexical"
	case ExprAmbiguity:
		return "ambiguity"
	case ExprUndefined:
		return "undefined"
	case ExprEval:
		return "evaluation"
	default:
		return "unknown"
	}
}

// ExpressionError reports a lexical, ambiguity, undefined-reference or
// evaluation failure, carrying the offending expression text.
type ExpressionError struct {
	Expr     string              // The offending expression text.
	Kind     ExpressionErrorKind // Failure class.
	Messages []string            // One or more failure messages.
}

// NewExpressionError returns a new ExpressionError.
func NewExpressionError(expr string, kind ExpressionErrorKind, msgs ...string) *ExpressionError {
	return &ExpressionError{Expr: expr, Kind: kind, Messages: msgs}
}

// Error returns the error string.
func (e *ExpressionError) Error() string {
	return fmt.Sprintf("typegraph: %s error in %q: %s", e.Kind, e.Expr, strings.Join(e.Messages, "; "))
}

// Is reports whether the target error matches the ambiguity sentinel.
// This allows errors.Is(exprErr, ErrAmbiguous) for ambiguity failures.
func (e *ExpressionError) Is(err error) bool {
	return err == ErrAmbiguous && e.Kind == ExprAmbiguity
}

// IsExpressionError returns true if the error is an ExpressionError.
func IsExpressionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExpressionError
	return errors.As(err, &e)
}

// ConflictError reports a rejected exclusive-slot overwrite, either from a
// direct mutation or during a graph merge.
type ConflictError struct {
	Entity string // Entity type of the instance being mutated.
	Attr   string // Relationship attribute name.
	msg    string
}

// NewConflictError returns a new ConflictError.
func NewConflictError(entity, attr, msg string) *ConflictError {
	return &ConflictError{Entity: entity, Attr: attr, msg: msg}
}

// Error returns the error string.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("typegraph: %s.%s: %s", e.Entity, e.Attr, e.msg)
}

// Is reports whether the target error matches the conflict sentinel.
func (e *ConflictError) Is(err error) bool {
	return err == ErrConflict
}

// IsConflict returns true if the error is a ConflictError.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *ConflictError
	return errors.As(err, &e) || errors.Is(err, ErrConflict)
}
