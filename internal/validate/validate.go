package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		instance = v
	})

	return instance
}

// fieldName reports violations with the snake_case name callers send on the wire.
func fieldName(f reflect.StructField) string {
	if name, ok := f.Tag.Lookup("field"); ok {
		return name
	}

	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return toSnake(f.Name)
	}

	return name
}

func toSnake(s string) string {
	var sb strings.Builder

	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				sb.WriteByte('_')
			}

			r += 'a' - 'A'
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// Struct checks v against its `validate` tags. Every violation is collected into a single
// *apperr.ValidationError.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}

	violations := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, describe(fe))
	}

	return &apperr.ValidationError{Violations: violations}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	case "email":
		return field + ": must be a valid email"
	case "gtfield":
		return fmt.Sprintf("%s: must be after %s", field, toSnake(fe.Param()))
	case "gtefield":
		return fmt.Sprintf("%s: must not be before %s", field, toSnake(fe.Param()))
	case "required_without":
		return fmt.Sprintf("%s: is required when %s is empty", field, toSnake(fe.Param()))
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fe.Param())
	}

	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}
