// Package cli implements upkeepctl, the operator command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/config"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

var ValidFormats = []string{"text", "json", "yaml"}

// RootOptions holds the global flags and the lazily opened backend shared by every command.
type RootOptions struct {
	Format   string
	Operator string

	cfg      *config.Config
	db       *sql.DB
	services *Services
}

type Option func(*RootOptions)

// WithServices skips the database and serves commands from svc.
func WithServices(svc *Services) Option {
	return func(o *RootOptions) { o.services = svc }
}

func NewRootCommand(cfg *config.Config, opts ...Option) *cobra.Command {
	root := &RootOptions{cfg: cfg}
	for _, opt := range opts {
		opt(root)
	}

	cmd := &cobra.Command{
		Use:   "upkeepctl",
		Short: "Operate the Upkeep CRM",
		Long:  "Operator tooling for the Upkeep property-maintenance CRM: migrations, tokens, reports, exports and imports.",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, root.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", root.Format, ValidFormats)
			}

			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return root.close()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&root.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&root.Operator, "as", "operator", "name recorded in the activity feed")

	cmd.AddCommand(NewMigrateCommand(root))
	cmd.AddCommand(NewTokenCommand(root))
	cmd.AddCommand(NewReportCommand(root))
	cmd.AddCommand(NewExportCommand(root))
	cmd.AddCommand(NewInvoicesCommand(root))
	cmd.AddCommand(NewLeadsCommand(root))

	return cmd
}

// context attaches the operator principal; the CLI already holds database credentials.
func (o *RootOptions) context(cmd *cobra.Command) context.Context {
	return auth.WithPrincipal(cmd.Context(), auth.Operator(o.Operator))
}

func (o *RootOptions) database() (*sql.DB, error) {
	if o.db != nil {
		return o.db, nil
	}

	db, err := database.New(o.cfg.ConnectionString(), database.Options{
		MaxOpenConns: o.cfg.DB.MaxOpenConns,
		MaxIdleConns: o.cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	o.db = db

	return db, nil
}

func (o *RootOptions) backend() (*Services, error) {
	if o.services != nil {
		return o.services, nil
	}

	db, err := o.database()
	if err != nil {
		return nil, err
	}

	o.services = NewServices(db)

	return o.services, nil
}

func (o *RootOptions) close() error {
	if o.db == nil {
		return nil
	}

	return o.db.Close()
}
