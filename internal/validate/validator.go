// Package validate compares decoded JSON payloads against their declared
// schemas. Validators are pure: they never mutate the payload, never panic on
// malformed input, and always return the full list of discrepancies in
// deterministic order.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velotools/velocheck/internal/schema"
)

// timeFormats contains the datetime string layouts the orchestrator is known
// to emit. Epoch numbers and zero dates are handled separately.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validator checks payloads against schemas. Implementations are safe for
// concurrent use.
type Validator interface {
	// Validate checks a payload whose root should be an object conforming
	// to s. An empty result means the payload satisfies the schema.
	Validate(s *schema.Schema, payload interface{}) []Discrepancy

	// ValidateList checks a payload whose root should be an array of
	// objects each conforming to s.
	ValidateList(s *schema.Schema, payload interface{}) []Discrepancy
}

type validator struct {
	strict bool
}

// Option adjusts validator behaviour.
type Option func(*validator)

// WithStrict makes the validator report payload keys the schema does not
// declare. The default is lenient: APIs are free to grow fields without
// breaking their contract.
func WithStrict() Option {
	return func(v *validator) {
		v.strict = true
	}
}

// NewValidator creates a validator.
func NewValidator(opts ...Option) Validator {
	v := &validator{}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

var _ Validator = (*validator)(nil)

func (v *validator) Validate(s *schema.Schema, payload interface{}) []Discrepancy {
	root := schema.ObjectOf(s)

	return v.walkSpec(&root, payload, nil)
}

func (v *validator) ValidateList(s *schema.Schema, payload interface{}) []Discrepancy {
	root := schema.ListOf(schema.ObjectOf(s))

	return v.walkSpec(&root, payload, nil)
}

// walkSpec dispatches one value against one spec. Null is handled here so
// list elements get the same nullability treatment as object fields.
func (v *validator) walkSpec(spec *schema.FieldSpec, value interface{}, path FieldPath) []Discrepancy {
	if value == nil {
		if spec.Nullable {
			return nil
		}

		return []Discrepancy{{
			Path:     path,
			Kind:     KindNullNotAllowed,
			Expected: expected(spec),
			Actual:   "null",
		}}
	}

	switch spec.Type {
	case schema.TypeObject:
		return v.walkSchema(spec.Object, value, path)
	case schema.TypeList:
		return v.walkList(spec, value, path)
	default:
		return v.checkScalar(spec, value, path)
	}
}

// walkSchema checks an object value field by field, in declaration order. A
// non-object value yields a single mismatch and the walk does not descend.
func (v *validator) walkSchema(s *schema.Schema, value interface{}, path FieldPath) []Discrepancy {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return []Discrepancy{{
			Path:     path,
			Kind:     KindTypeMismatch,
			Expected: "object " + s.Name,
			Actual:   describe(value),
		}}
	}

	var out []Discrepancy

	for i := range s.Fields {
		field := &s.Fields[i]

		val, present := obj[field.Name]
		if !present {
			if field.Spec.Required {
				out = append(out, Discrepancy{
					Path:     path.child(field.Name),
					Kind:     KindMissingField,
					Expected: expected(&field.Spec),
				})
			}

			continue
		}

		out = append(out, v.walkSpec(&field.Spec, val, path.child(field.Name))...)
	}

	if v.strict {
		for _, name := range undeclaredKeys(s, obj) {
			out = append(out, Discrepancy{
				Path:   path.child(name),
				Kind:   KindUnexpectedField,
				Actual: describe(obj[name]),
			})
		}
	}

	return out
}

// walkList checks every element. A bad element never suppresses its
// siblings, so one report covers the whole array.
func (v *validator) walkList(spec *schema.FieldSpec, value interface{}, path FieldPath) []Discrepancy {
	items, ok := value.([]interface{})
	if !ok {
		return []Discrepancy{{
			Path:     path,
			Kind:     KindTypeMismatch,
			Expected: "list",
			Actual:   describe(value),
		}}
	}

	var out []Discrepancy

	for i, item := range items {
		out = append(out, v.walkSpec(spec.Elem, item, path.child(strconv.Itoa(i)))...)
	}

	return out
}

func (v *validator) checkScalar(spec *schema.FieldSpec, value interface{}, path FieldPath) []Discrepancy {
	var ok bool

	switch spec.Type {
	case schema.TypeAny:
		return nil
	case schema.TypeString:
		var s string
		if s, ok = value.(string); ok && len(spec.Enum) > 0 {
			ok = containsString(spec.Enum, s)
		}
	case schema.TypeNumber:
		ok = isNumber(value)
	case schema.TypeBool:
		_, ok = value.(bool)
	case schema.TypeDatetime:
		ok = isDatetime(value)
	case schema.TypeUUID:
		var s string
		if s, ok = value.(string); ok {
			ok = uuid.Validate(s) == nil
		}
	}

	if !ok {
		return []Discrepancy{{
			Path:     path,
			Kind:     KindTypeMismatch,
			Expected: expected(spec),
			Actual:   describe(value),
		}}
	}

	return nil
}

// undeclaredKeys lists payload keys the schema does not declare, sorted so
// strict-mode output is deterministic despite map iteration order.
func undeclaredKeys(s *schema.Schema, obj map[string]interface{}) []string {
	declared := make(map[string]bool, len(s.Fields))
	for i := range s.Fields {
		declared[s.Fields[i].Name] = true
	}

	var extra []string

	for name := range obj {
		if !declared[name] {
			extra = append(extra, name)
		}
	}

	sort.Strings(extra)

	return extra
}

// isNumber accepts every JSON number representation. Integers and floats are
// deliberately not distinguished.
func isNumber(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	default:
		return false
	}
}

// isDatetime accepts the orchestrator's datetime representations: ISO-8601
// strings, "0000"-prefixed zero dates and millisecond epoch numbers.
func isDatetime(value interface{}) bool {
	if isNumber(value) {
		return true
	}

	s, ok := value.(string)
	if !ok {
		return false
	}

	if strings.HasPrefix(s, "0000") {
		return true
	}

	for _, layout := range timeFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}

	return false
}

// expected names what a spec wants at a path, for report output.
func expected(spec *schema.FieldSpec) string {
	switch spec.Type {
	case schema.TypeObject:
		if spec.Object != nil {
			return "object " + spec.Object.Name
		}

		return "object"
	case schema.TypeList:
		return "list"
	case schema.TypeString:
		if len(spec.Enum) > 0 {
			return "one of [" + strings.Join(spec.Enum, " ") + "]"
		}

		return "string"
	default:
		return string(spec.Type)
	}
}

// describe names a payload value for report output. Long strings are
// truncated; reports point at values, they do not reproduce them.
func describe(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return fmt.Sprintf("string %q", snippet(val))
	case float64, float32, int, int32, int64, json.Number:
		return fmt.Sprintf("number %v", val)
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "list"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func snippet(s string) string {
	const max = 40

	if len(s) > max {
		return s[:max] + "..."
	}

	return s
}
