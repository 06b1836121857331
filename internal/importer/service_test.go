package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/importer"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

type createFunc func(ctx context.Context, params lead.CreateParams) (*lead.Lead, error)

func (f createFunc) Create(ctx context.Context, params lead.CreateParams) (*lead.Lead, error) {
	return f(ctx, params)
}

const csvFile = "Name,Email\n" +
	"Dana Ruiz,dana@example.com\n" +
	"Lee Park,not-an-email\n" +
	"Ana Silva,ana@example.com\n"

func staff() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), Name: "Lee", Role: auth.RoleManager})
}

func TestService_Import(t *testing.T) {
	var sources []string

	svc := importer.NewService(createFunc(func(_ context.Context, p lead.CreateParams) (*lead.Lead, error) {
		if !strings.Contains(p.Email, "@") {
			return nil, apperr.Invalid("email: must be a valid email")
		}

		sources = append(sources, p.Source)

		return &lead.Lead{ID: uuid.New(), Name: p.Name, Source: p.Source}, nil
	}))

	res, err := svc.Import(staff(), strings.NewReader(csvFile), "csv-import")
	require.NoError(t, err)

	assert.Len(t, res.Created, 2)
	assert.Equal(t, []importer.Rejected{{Line: 3, Reason: "email: must be a valid email"}}, res.Rejected)
	assert.Equal(t, []string{"csv-import", "csv-import"}, sources)
}

func TestService_Import_WrappedValidationReason(t *testing.T) {
	svc := importer.NewService(createFunc(func(_ context.Context, p lead.CreateParams) (*lead.Lead, error) {
		if !strings.Contains(p.Email, "@") {
			return nil, fmt.Errorf("creating lead: %w", apperr.Invalid("email: must be a valid email", "phone: required"))
		}

		return &lead.Lead{ID: uuid.New(), Name: p.Name}, nil
	}))

	res, err := svc.Import(staff(), strings.NewReader(csvFile), "csv-import")
	require.NoError(t, err)

	assert.Equal(t, []importer.Rejected{{Line: 3, Reason: "email: must be a valid email; phone: required"}}, res.Rejected)
}

func TestService_Import_StopsOnStoreError(t *testing.T) {
	calls := 0

	svc := importer.NewService(createFunc(func(context.Context, lead.CreateParams) (*lead.Lead, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("connection refused")
		}

		return &lead.Lead{ID: uuid.New()}, nil
	}))

	res, err := svc.Import(staff(), strings.NewReader(csvFile), "")
	require.ErrorContains(t, err, "line 3")
	assert.Len(t, res.Created, 1)
	assert.Equal(t, 2, calls)
}

func TestService_Import_Unauthorized(t *testing.T) {
	svc := importer.NewService(createFunc(func(context.Context, lead.CreateParams) (*lead.Lead, error) {
		t.Fatal("no lead may be created")
		return nil, nil
	}))

	_, err := svc.Import(context.Background(), strings.NewReader("Name,Email\n"), "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
