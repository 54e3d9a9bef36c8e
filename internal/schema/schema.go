// Package schema defines the declarative field schemas endpoint payloads are
// validated against. A schema names the fields a payload must carry, whether
// each field may be absent or null, and the shape of nested objects and lists.
package schema

// Type classifies the wire-level value a field must hold.
type Type string

const (
	// TypeAny accepts every value shape. Whether null satisfies the field
	// is still governed by its Nullable flag.
	TypeAny Type = "any"
	// TypeString accepts JSON strings.
	TypeString Type = "string"
	// TypeNumber accepts every JSON number; integers and floats are not
	// distinguished.
	TypeNumber Type = "number"
	// TypeBool accepts JSON booleans.
	TypeBool Type = "bool"
	// TypeDatetime accepts ISO-8601 strings, zero-date strings and
	// millisecond epoch numbers.
	TypeDatetime Type = "datetime"
	// TypeUUID accepts RFC 4122 UUID strings.
	TypeUUID Type = "uuid"
	// TypeObject accepts JSON objects conforming to a nested schema.
	TypeObject Type = "object"
	// TypeList accepts JSON arrays whose elements conform to an element spec.
	TypeList Type = "list"
)

// FieldSpec describes a single declared value: its type, whether the field
// must be present, whether null satisfies it, and any nested shape.
type FieldSpec struct {
	Type     Type
	Required bool
	Nullable bool

	// Enum constrains string fields to a fixed set of values. Empty means
	// unconstrained.
	Enum []string

	// Object is the nested schema for TypeObject fields.
	Object *Schema

	// Elem is the element spec for TypeList fields.
	Elem *FieldSpec
}

// Field pairs a payload key with its spec.
type Field struct {
	Name string
	Spec FieldSpec
}

// Schema is an ordered set of field declarations. Fields keep declaration
// order so validation reports come out in a stable, predictable order.
type Schema struct {
	Name   string
	Fields []Field
}

// New assembles a named schema from fields in declaration order.
func New(name string, fields []Field) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// Require declares a mandatory, non-null field of the given type.
func Require(t Type) FieldSpec {
	return FieldSpec{Type: t, Required: true}
}

// AllowNull declares a mandatory field that may be null.
func AllowNull(t Type) FieldSpec {
	return FieldSpec{Type: t, Required: true, Nullable: true}
}

// Optional declares a field that may be absent but not null.
func Optional(t Type) FieldSpec {
	return FieldSpec{Type: t}
}

// OptionalNull declares a field that may be absent or null.
func OptionalNull(t Type) FieldSpec {
	return FieldSpec{Type: t, Nullable: true}
}

// OneOf declares a mandatory string field restricted to a fixed set of values.
func OneOf(values ...string) FieldSpec {
	return FieldSpec{Type: TypeString, Required: true, Enum: values}
}

// ListOf declares a mandatory list whose elements conform to elem.
func ListOf(elem FieldSpec) FieldSpec {
	return FieldSpec{Type: TypeList, Required: true, Elem: &elem}
}

// ObjectOf declares a mandatory object conforming to s.
func ObjectOf(s *Schema) FieldSpec {
	return FieldSpec{Type: TypeObject, Required: true, Object: s}
}

// OrNull returns a copy of the spec that also accepts an explicit null.
func (s FieldSpec) OrNull() FieldSpec {
	s.Nullable = true
	return s
}

// OrAbsent returns a copy of the spec whose field may be left out entirely.
func (s FieldSpec) OrAbsent() FieldSpec {
	s.Required = false
	return s
}
