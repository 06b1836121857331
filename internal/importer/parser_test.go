package importer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/importer"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    []importer.Row
		wantErr error
	}

	tests := []testCase{
		{
			name: "CommaSeparatedWithAliases",
			input: "Full Name,E-mail,Mobile,Organization,Interest,Notes\n" +
				"Dana Ruiz,dana@example.com,555-0100,Harbor View HOA,Gutters,\"Two buildings, 40 units\"\n",
			want: []importer.Row{{Line: 2, Params: lead.CreateParams{
				Name: "Dana Ruiz", Email: "dana@example.com", Phone: "555-0100",
				Company: "Harbor View HOA", Service: "Gutters", Message: "Two buildings, 40 units",
			}}},
		},
		{
			name: "SemicolonsAndPreamble",
			input: "Exported from FormDesk;;\n" +
				";;\n" +
				"Name;Phone;Source\n" +
				"Lee Park;555-0199;trade show\n" +
				";;\n" +
				"Ana Silva;555-0111;\n",
			want: []importer.Row{
				{Line: 4, Params: lead.CreateParams{Name: "Lee Park", Phone: "555-0199", Source: "trade show"}},
				{Line: 6, Params: lead.CreateParams{Name: "Ana Silva", Phone: "555-0111"}},
			},
		},
		{
			name:    "NoRecognisableHeader",
			input:   "Date,Amount\n2026-01-01,12.00\n",
			wantErr: importer.ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.Parse(strings.NewReader(tt.input))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: []byte("Name,Company\nJosé,Café Niño\n"),
			want:  "Name,Company\nJosé,Café Niño\n",
		},
		{
			name:  "UTF8BOMIsStripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, "Name\nJosé\n"...),
			want:  "Name\nJosé\n",
		},
		{
			name:  "Windows1252",
			input: []byte{'J', 'o', 's', 0xE9, ',', 'N', 'i', 0xF1, 'o', '\n'},
			want:  "José,Niño\n",
		},
		{
			name:  "UTF16LE",
			input: []byte{0xFF, 0xFE, 'N', 0, 'a', 0, 'm', 0, 'e', 0, '\n', 0},
			want:  "Name\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := importer.UTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
