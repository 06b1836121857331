// Package enum holds the parsing shared by the closed string enums of the domain packages.
package enum

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

// Invalid builds the validation error reported when a value of field is not one of all.
func Invalid[T ~string](field string, all []T) error {
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = string(v)
	}

	return apperr.Invalid(fmt.Sprintf("%s: must be one of [%s]", field, strings.Join(names, " ")))
}

// Parse maps s onto one of all, ignoring case. Anything else is reported by wrapping errInvalid.
func Parse[T ~string](s string, all []T, errInvalid error) (T, error) {
	s = strings.TrimSpace(s)

	for _, v := range all {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%q: %w", s, errInvalid)
}
