package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is returned when a schema declaration is malformed.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrSchemaCycle is returned when nested object schemas form a cycle.
	ErrSchemaCycle = errors.New("schema cycle")
)

// Check verifies a schema is well formed before it is used for validation.
// Schemas are configuration, so every defect found here is fatal: an unnamed
// or duplicated field, a spec without a known type, an object without a
// nested schema, a list without an element spec, an enum on a non-string
// field, or a cycle through nested object schemas.
func Check(s *Schema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}

	return checkSchema(s, make(map[*Schema]bool))
}

// checkSchema walks one schema. The stack holds the schemas on the current
// descent path so self-referencing declarations are caught instead of
// recursing forever.
func checkSchema(s *Schema, stack map[*Schema]bool) error {
	if stack[s] {
		return fmt.Errorf("%w: schema %q is nested inside itself", ErrSchemaCycle, s.Name)
	}

	stack[s] = true
	defer delete(stack, s)

	if s.Name == "" {
		return fmt.Errorf("%w: schema has no name", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(s.Fields))

	for i := range s.Fields {
		field := &s.Fields[i]

		if field.Name == "" {
			return fmt.Errorf("%w: schema %q has an unnamed field", ErrInvalidSchema, s.Name)
		}

		if seen[field.Name] {
			return fmt.Errorf("%w: schema %q declares field %q twice", ErrInvalidSchema, s.Name, field.Name)
		}

		seen[field.Name] = true

		if err := checkSpec(&field.Spec, s.Name+"."+field.Name, stack); err != nil {
			return err
		}
	}

	return nil
}

func checkSpec(spec *FieldSpec, at string, stack map[*Schema]bool) error {
	if len(spec.Enum) > 0 && spec.Type != TypeString && spec.Type != "" {
		return fmt.Errorf("%w: %s restricts values but is not a string", ErrInvalidSchema, at)
	}

	switch spec.Type {
	case TypeObject:
		if spec.Object == nil {
			return fmt.Errorf("%w: %s is an object without a nested schema", ErrInvalidSchema, at)
		}

		return checkSchema(spec.Object, stack)

	case TypeList:
		if spec.Elem == nil {
			return fmt.Errorf("%w: %s is a list without an element spec", ErrInvalidSchema, at)
		}

		return checkSpec(spec.Elem, at+"[]", stack)

	case TypeAny, TypeString, TypeNumber, TypeBool, TypeDatetime, TypeUUID:
		return nil

	case "":
		return fmt.Errorf("%w: %s has no type", ErrInvalidSchema, at)

	default:
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidSchema, at, spec.Type)
	}
}
