package validate

import "fmt"

// Kind classifies a single contract discrepancy.
type Kind string

const (
	// KindMissingField reports a required field absent from the payload.
	KindMissingField Kind = "missing_field"

	// KindUnexpectedField reports a payload key the schema does not declare.
	// Only strict validators produce it.
	KindUnexpectedField Kind = "unexpected_field"

	// KindTypeMismatch reports a value whose type, shape or allowed values
	// do not match its spec.
	KindTypeMismatch Kind = "type_mismatch"

	// KindNullNotAllowed reports an explicit null on a non-nullable field.
	KindNullNotAllowed Kind = "null_not_allowed"

	// KindFetchFailed reports that an endpoint payload could not be
	// retrieved at all. It is attached at the payload root by the runner,
	// never by a validator.
	KindFetchFailed Kind = "fetch_failed"
)

// Discrepancy is a single point of disagreement between a payload and its
// schema. Expected and Actual are short human-readable descriptions of what
// the schema wanted and what the payload held, not reproductions of the
// values themselves.
type Discrepancy struct {
	Path     FieldPath
	Kind     Kind
	Expected string
	Actual   string
}

func (d Discrepancy) String() string {
	switch {
	case d.Expected != "" && d.Actual != "":
		return fmt.Sprintf("%s: %s (expected %s, got %s)", d.Path, d.Kind, d.Expected, d.Actual)
	case d.Expected != "":
		return fmt.Sprintf("%s: %s (expected %s)", d.Path, d.Kind, d.Expected)
	case d.Actual != "":
		return fmt.Sprintf("%s: %s (%s)", d.Path, d.Kind, d.Actual)
	default:
		return fmt.Sprintf("%s: %s", d.Path, d.Kind)
	}
}
