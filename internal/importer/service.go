package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

// LeadCreator is satisfied by *lead.Service.
type LeadCreator interface {
	Create(ctx context.Context, params lead.CreateParams) (*lead.Lead, error)
}

type Service struct {
	leads LeadCreator
}

func NewService(leads LeadCreator) *Service {
	return &Service{leads: leads}
}

// Rejected is a row that failed validation.
type Rejected struct {
	Line   int
	Reason string
}

type Result struct {
	Created  []*lead.Lead
	Rejected []Rejected
}

// Import creates one lead per CSV row. Rows failing validation are collected and skipped; any
// other error stops the import, leaving the leads created so far in place.
func (s *Service) Import(ctx context.Context, r io.Reader, defaultSource string) (*Result, error) {
	if _, err := auth.Authorize(ctx, auth.OpManageLeads); err != nil {
		return nil, err
	}

	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	for _, row := range rows {
		if row.Params.Source == "" {
			row.Params.Source = defaultSource
		}

		l, err := s.leads.Create(ctx, row.Params)
		if err != nil {
			if apperr.IsValidation(err) {
				res.Rejected = append(res.Rejected, Rejected{Line: row.Line, Reason: reason(err)})
				continue
			}

			return res, fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Created = append(res.Created, l)
	}

	return res, nil
}

func reason(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Violations, "; ")
	}

	return err.Error()
}
