package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/cli"
	"github.com/MrJamesThe3rd/upkeep/internal/config"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.Issuer = "upkeep"
	cfg.Auth.TokenTTL = time.Hour

	return cfg
}

func execute(t *testing.T, svc *cli.Services, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testConfig(), cli.WithServices(svc))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := cli.NewRootCommand(testConfig())

	for _, path := range [][]string{
		{"migrate", "up"}, {"migrate", "down"}, {"migrate", "version"},
		{"token"},
		{"report", "quarterly"}, {"report", "dashboard"},
		{"export"},
		{"invoices", "mark-overdue"},
		{"leads", "import"},
	} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, &cli.Services{}, "report", "quarterly", "--format", "xml")
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func quarterlyStore(t *testing.T) *cli.Services {
	ctrl := gomock.NewController(t)
	repo := dashboard.NewMockRepository(ctrl)

	repo.EXPECT().IssuedSince(gomock.Any(), gomock.Any()).Return(dashboard.Totals{Count: 4, AmountCents: 400000}, nil)
	repo.EXPECT().PaidSince(gomock.Any(), gomock.Any()).Return(dashboard.Totals{Count: 1, AmountCents: 123456}, nil)
	repo.EXPECT().EstimatesByStatus(gomock.Any(), gomock.Any()).Return(map[estimate.Status]dashboard.Totals{
		estimate.StatusApproved: {Count: 2, AmountCents: 73000},
	}, nil)
	repo.EXPECT().LeadsByStatus(gomock.Any(), gomock.Any()).Return(map[lead.Status]dashboard.Totals{
		lead.StatusNew: {Count: 9},
	}, nil)
	repo.EXPECT().WorkOrdersByStatus(gomock.Any(), gomock.Any()).Return(map[workorder.Status]dashboard.Totals{}, nil)

	return &cli.Services{Dashboard: dashboard.NewService(repo)}
}

func TestReportQuarterly(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		out, err := execute(t, quarterlyStore(t), "report", "quarterly")
		require.NoError(t, err)

		assert.Contains(t, out, "Issued: 4 invoices, $4,000.00")
		assert.Contains(t, out, "Paid:   1 payments, $1,234.56")
		assert.Contains(t, out, "$730.00")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := execute(t, quarterlyStore(t), "report", "quarterly", "--format", "json")
		require.NoError(t, err)

		var got dashboard.Quarterly
		require.NoError(t, json.Unmarshal([]byte(out), &got))

		assert.Equal(t, dashboard.Totals{Count: 4, AmountCents: 400000}, got.Issued)
		assert.Len(t, got.Estimates, len(estimate.Statuses()))
		assert.Equal(t, dashboard.QuarterStart(time.Now()), got.Start)
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := execute(t, quarterlyStore(t), "report", "quarterly", "--format", "yaml")
		require.NoError(t, err)

		assert.Contains(t, out, "issued:\n  count: 4\n  amount_cents: 400000\n")
		assert.Contains(t, out, "- status: new\n    count: 9\n")
	})
}

func TestToken(t *testing.T) {
	out, err := execute(t, nil, "token", "--name", "Lee Park", "--role", "Admin", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Token string    `json:"token"`
		Role  auth.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, auth.RoleAdmin, got.Role)

	p, err := auth.NewTokens("test-secret", "upkeep", time.Hour).Verify(got.Token)
	require.NoError(t, err)
	assert.Equal(t, "Lee Park", p.Name)
	assert.Equal(t, auth.RoleAdmin, p.Role)

	_, err = execute(t, nil, "token", "--name", "x", "--role", "owner")
	assert.True(t, apperr.IsValidation(err))
}

func TestExport_UnknownKind(t *testing.T) {
	_, err := execute(t, &cli.Services{}, "export", "contacts")
	assert.True(t, apperr.IsValidation(err))
}
