package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Name   string
	Role   string
	UserID string
	TTL    time.Duration
}

func NewTokenCommand(root *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		Long: `Mint an HS256 bearer token signed with AUTH_JWT_SECRET.

Examples:
  upkeepctl token --name "Lee Park" --role manager
  upkeepctl token --name portal --role client --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "display name of the principal (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Role, "role", string(auth.RoleManager), "admin, manager or client")
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "subject id; a new one is generated when empty")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "token lifetime; defaults to AUTH_TOKEN_TTL")

	return cmd
}

type tokenOutput struct {
	Token     string    `json:"token" yaml:"token"`
	UserID    uuid.UUID `json:"user_id" yaml:"user_id"`
	Role      auth.Role `json:"role" yaml:"role"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

func runToken(opts *TokenOptions, cmd *cobra.Command) error {
	role, err := auth.ParseRole(opts.Role)
	if err != nil {
		return err
	}

	id := uuid.New()
	if opts.UserID != "" {
		if id, err = uuid.Parse(opts.UserID); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	ttl := opts.cfg.Auth.TokenTTL
	if opts.TTL > 0 {
		ttl = opts.TTL
	}

	signed, expiresAt, err := auth.NewTokens(opts.cfg.Auth.Secret, opts.cfg.Auth.Issuer, ttl).
		Issue(auth.Principal{UserID: id, Name: opts.Name, Role: role})
	if err != nil {
		return err
	}

	out := tokenOutput{Token: signed, UserID: id, Role: role, ExpiresAt: expiresAt}

	return render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, signed)
		return err
	})
}
