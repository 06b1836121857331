// Package importer loads leads from CSV exports of spreadsheets and web form tools.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

var ErrNoHeader = errors.New("no header row with a name column and an email or phone column")

type field int

const (
	fieldName field = iota
	fieldEmail
	fieldPhone
	fieldCompany
	fieldService
	fieldMessage
	fieldSource
)

// aliases maps lower-cased header titles onto lead fields.
var aliases = map[string]field{
	"name":          fieldName,
	"full name":     fieldName,
	"contact":       fieldName,
	"contact name":  fieldName,
	"email":         fieldEmail,
	"e-mail":        fieldEmail,
	"email address": fieldEmail,
	"phone":         fieldPhone,
	"phone number":  fieldPhone,
	"mobile":        fieldPhone,
	"telephone":     fieldPhone,
	"company":       fieldCompany,
	"organization":  fieldCompany,
	"business":      fieldCompany,
	"service":       fieldService,
	"service type":  fieldService,
	"interest":      fieldService,
	"message":       fieldMessage,
	"notes":         fieldMessage,
	"comments":      fieldMessage,
	"source":        fieldSource,
	"channel":       fieldSource,
}

// Row is one parsed data line. Line is 1-based in the source file.
type Row struct {
	Line   int
	Params lead.CreateParams
}

type columns map[field]int

func (c columns) value(row []string, f field) string {
	idx, ok := c[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// Parse reads leads from a CSV file in any common charset, separated by commas or semicolons.
// Rows above the header and blank rows are skipped.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := UTF8Reader(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffComma(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	cols, headerIdx := findHeader(records)
	if cols == nil {
		return nil, ErrNoHeader
	}

	var rows []Row

	for i, rec := range records[headerIdx+1:] {
		params := lead.CreateParams{
			Name:    cols.value(rec, fieldName),
			Email:   cols.value(rec, fieldEmail),
			Phone:   cols.value(rec, fieldPhone),
			Company: cols.value(rec, fieldCompany),
			Service: cols.value(rec, fieldService),
			Message: cols.value(rec, fieldMessage),
			Source:  cols.value(rec, fieldSource),
		}

		if params == (lead.CreateParams{}) {
			continue
		}

		rows = append(rows, Row{Line: headerIdx + i + 2, Params: params})
	}

	return rows, nil
}

// sniffComma picks ';' when the first line has more semicolons than commas.
func sniffComma(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}

	return ','
}

func findHeader(records [][]string) (columns, int) {
	for idx, rec := range records {
		cols := columns{}

		for i, cell := range rec {
			if f, ok := aliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
				if _, seen := cols[f]; !seen {
					cols[f] = i
				}
			}
		}

		_, hasName := cols[fieldName]
		_, hasEmail := cols[fieldEmail]
		_, hasPhone := cols[fieldPhone]

		if hasName && (hasEmail || hasPhone) {
			return cols, idx
		}
	}

	return nil, 0
}
