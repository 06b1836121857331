package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

// InvoicesOptions holds flags for the invoices commands.
type InvoicesOptions struct {
	*RootOptions
	AsOf string
	Now  func() time.Time
}

func NewInvoicesCommand(root *RootOptions) *cobra.Command {
	opts := &InvoicesOptions{RootOptions: root, Now: time.Now}

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice maintenance",
	}

	markOverdue := &cobra.Command{
		Use:   "mark-overdue",
		Short: "Flag sent invoices whose due date has passed",
		Long: `Flag sent invoices whose due date has passed as overdue.

Partially paid invoices keep their status. Meant to run daily from cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMarkOverdue(opts, cmd)
		},
	}
	markOverdue.Flags().StringVar(&opts.AsOf, "as-of", "", "reference date (YYYY-MM-DD); now when empty")

	cmd.AddCommand(markOverdue)

	return cmd
}

func runMarkOverdue(opts *InvoicesOptions, cmd *cobra.Command) error {
	asOf := opts.Now()

	if opts.AsOf != "" {
		t, err := time.Parse(time.DateOnly, opts.AsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}

		asOf = t
	}

	svc, err := opts.backend()
	if err != nil {
		return err
	}

	marked, err := svc.Invoices.MarkOverdue(opts.context(cmd), asOf)
	if err != nil {
		return fmt.Errorf("marking invoices overdue: %w", err)
	}

	return render(cmd.OutOrStdout(), opts.Format, marked, func(w io.Writer) error {
		for _, inv := range marked {
			if _, err := fmt.Fprintf(w, "%s\t%s\tdue %s\n", inv.Number, money.Format(inv.AmountCents),
				inv.DueAt.Format(time.DateOnly)); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, "%d invoice(s) marked overdue\n", len(marked))

		return err
	})
}
