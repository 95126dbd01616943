// Package validation turns request validation failures into the field keyed
// error map the API returns with HTTP 422.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors collects messages per field path, e.g. "name.kk" or "translations.0.name".
type Errors struct {
	fields map[string][]string
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{fields: map[string][]string{}}
}

// Add appends a message for field.
func (e *Errors) Add(field, message string) {
	if e.fields == nil {
		e.fields = map[string][]string{}
	}
	e.fields[field] = append(e.fields[field], message)
}

// Has reports whether field already has at least one message.
func (e *Errors) Has(field string) bool {
	return len(e.fields[field]) > 0
}

// Empty reports whether no message was recorded.
func (e *Errors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// Fields exposes the collected messages.
func (e *Errors) Fields() map[string][]string {
	return e.fields
}

// Merge copies every message of other into e.
func (e *Errors) Merge(other *Errors) {
	if other.Empty() {
		return
	}
	for field, messages := range other.fields {
		for _, message := range messages {
			e.Add(field, message)
		}
	}
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.fields))
	for field := range e.fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+strings.Join(e.fields[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}

// Single is shorthand for an error set holding one message.
func Single(field, message string) *Errors {
	errs := New()
	errs.Add(field, message)
	return errs
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return v
}

var indexPattern = regexp.MustCompile(`\[(\d+|[^\]]+)\]`)

// Struct validates v against its `validate` tags. It returns an empty set
// when v is valid.
func Struct(v any) *Errors {
	errs := New()
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrors validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrors) {
		errs.Add("request", err.Error())
		return errs
	}

	for _, fe := range fieldErrors {
		errs.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return errs
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}

// fieldPath turns "createRequest.translations[0].name" into "translations.0.name".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fieldPath(fe.Namespace()), "_", " ")
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("The %s must have at least %s items.", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, strings.ReplaceAll(toSnake(fe.Param()), "_", " "))
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.TrimSuffix(field, " confirmation"))
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "number", "numeric":
		return fmt.Sprintf("The %s must be an integer.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid UUID.", field)
	case "boolean":
		return fmt.Sprintf("The %s must be true or false.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
