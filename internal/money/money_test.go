package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

func TestDecimal(t *testing.T) {
	assert.Equal(t, "0.00", money.Decimal(0))
	assert.Equal(t, "0.05", money.Decimal(5))
	assert.Equal(t, "500.00", money.Decimal(50000))
	assert.Equal(t, "-12.34", money.Decimal(-1234))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$0.99", money.Format(99))
	assert.Equal(t, "$1,000.00", money.Format(100000))
	assert.Equal(t, "$1,234,567.89", money.Format(123456789))
	assert.Equal(t, "-$400.00", money.Format(-40000))
}

func TestParse(t *testing.T) {
	type testCase struct {
		in      string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{in: "400", want: 40000},
		{in: "1234.5", want: 123450},
		{in: " 0.01 ", want: 1},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := money.Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
