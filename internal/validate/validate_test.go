package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/validate"
)

type sample struct {
	Name      string    `validate:"required,max=10"`
	Email     string    `validate:"omitempty,email"`
	Amount    int64     `json:"amount_cents" validate:"min=1"`
	StartsAt  time.Time `validate:"required"`
	EndsAt    time.Time `validate:"required,gtfield=StartsAt"`
	Processor string    `field:"processor_name" validate:"required"`
}

func TestStruct(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		input   sample
		wantErr []string
	}

	tests := []testCase{
		{
			name: "Valid",
			input: sample{
				Name: "Jane", Amount: 100, StartsAt: start, EndsAt: start.Add(time.Hour), Processor: "cash",
			},
		},
		{
			name: "EveryViolationReported",
			input: sample{
				Name: "far too long a name", Email: "nope", StartsAt: start, EndsAt: start,
			},
			wantErr: []string{
				"name: must be at most 10",
				"email: must be a valid email",
				"amount_cents: must be at least 1",
				"ends_at: must be after starts_at",
				"processor_name: is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.input)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Violations)
		})
	}
}
