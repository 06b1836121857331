package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
)

func TestParseRole(t *testing.T) {
	r, err := auth.ParseRole("MANAGER")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, r)

	_, err = auth.ParseRole("root")
	assert.True(t, apperr.IsValidation(err))
}

func TestAuthorize(t *testing.T) {
	admin := auth.Principal{UserID: uuid.New(), Name: "ada", Role: auth.RoleAdmin}
	manager := auth.Principal{UserID: uuid.New(), Name: "max", Role: auth.RoleManager}
	client := auth.Principal{UserID: uuid.New(), Name: "cleo", Role: auth.RoleClient}

	type testCase struct {
		name      string
		principal *auth.Principal
		op        auth.Operation
		wantErr   bool
	}

	tests := []testCase{
		{name: "AnonymousBooking", op: auth.OpSubmitBooking},
		{name: "ClientBooking", principal: &client, op: auth.OpSubmitBooking},
		{name: "AnonymousConvertDenied", op: auth.OpConvertEstimate, wantErr: true},
		{name: "ClientConvertDenied", principal: &client, op: auth.OpConvertEstimate, wantErr: true},
		{name: "ManagerConvert", principal: &manager, op: auth.OpConvertEstimate},
		{name: "ManagerDeleteDenied", principal: &manager, op: auth.OpDelete, wantErr: true},
		{name: "AdminDelete", principal: &admin, op: auth.OpDelete},
		{name: "UnknownOperationDenied", principal: &admin, op: auth.Operation("nuke"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = auth.WithPrincipal(ctx, *tt.principal)
			}

			got, err := auth.Authorize(ctx, tt.op)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrUnauthorized)
				assert.Equal(t, "unauthorized", err.Error())

				return
			}

			require.NoError(t, err)

			if tt.principal != nil {
				assert.Equal(t, *tt.principal, got)
			}
		})
	}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokens("s3cret", "upkeep", time.Hour)
	p := auth.Principal{UserID: uuid.New(), Name: "max", Role: auth.RoleManager}

	raw, expiresAt, err := tokens.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokens_Rejects(t *testing.T) {
	p := auth.Principal{UserID: uuid.New(), Name: "max", Role: auth.RoleManager}

	raw, _, err := auth.NewTokens("s3cret", "upkeep", time.Hour).Issue(p)
	require.NoError(t, err)

	expired, _, err := auth.NewTokens("s3cret", "upkeep", -time.Minute).Issue(p)
	require.NoError(t, err)

	tests := map[string]struct {
		tokens *auth.Tokens
		raw    string
	}{
		"WrongSecret": {tokens: auth.NewTokens("other", "upkeep", time.Hour), raw: raw},
		"WrongIssuer": {tokens: auth.NewTokens("s3cret", "elsewhere", time.Hour), raw: raw},
		"Expired":     {tokens: auth.NewTokens("s3cret", "upkeep", time.Hour), raw: expired},
		"Garbage":     {tokens: auth.NewTokens("s3cret", "upkeep", time.Hour), raw: "not.a.token"},
		"NoSecret":    {tokens: auth.NewTokens("", "upkeep", time.Hour), raw: raw},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.tokens.Verify(tt.raw)
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
		})
	}
}
