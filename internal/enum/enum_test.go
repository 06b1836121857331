package enum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/enum"
)

type color string

var colors = []color{"red", "green"}

func TestParse(t *testing.T) {
	errInvalid := enum.Invalid("color", colors)

	type testCase struct {
		name    string
		in      string
		want    color
		wantErr bool
	}

	tests := []testCase{
		{name: "Exact", in: "red", want: "red"},
		{name: "CaseInsensitive", in: " GREEN ", want: "green"},
		{name: "Unknown", in: "blue", wantErr: true},
		{name: "Empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enum.Parse(tt.in, colors, errInvalid)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalid)
				assert.True(t, apperr.IsValidation(err))
				assert.Contains(t, err.Error(), "color: must be one of [red green]")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
