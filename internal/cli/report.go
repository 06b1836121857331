package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

// ReportOptions holds flags for the report commands.
type ReportOptions struct {
	*RootOptions
	Now func() time.Time
}

func NewReportCommand(root *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: root, Now: time.Now}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard and quarterly figures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "quarterly",
		Short: "Figures for the current calendar quarter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuarterly(opts, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Pipelines, revenue, overdue invoices and top clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(opts, cmd)
		},
	})

	return cmd
}

func runQuarterly(opts *ReportOptions, cmd *cobra.Command) error {
	svc, err := opts.backend()
	if err != nil {
		return err
	}

	q, err := svc.Dashboard.Quarterly(opts.context(cmd), opts.Now())
	if err != nil {
		return fmt.Errorf("building quarterly report: %w", err)
	}

	return render(cmd.OutOrStdout(), opts.Format, q, func(w io.Writer) error {
		return writeQuarterly(w, q)
	})
}

func runDashboard(opts *ReportOptions, cmd *cobra.Command) error {
	svc, err := opts.backend()
	if err != nil {
		return err
	}

	s, err := svc.Dashboard.Summary(opts.context(cmd), opts.Now())
	if err != nil {
		return fmt.Errorf("building dashboard: %w", err)
	}

	return render(cmd.OutOrStdout(), opts.Format, s, func(w io.Writer) error {
		return writeSummary(w, s)
	})
}

var heading = lipgloss.NewStyle().Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
}

func writeQuarterly(w io.Writer, q *dashboard.Quarterly) error {
	_, err := fmt.Fprintf(w, "%s\n\nIssued: %d invoices, %s\nPaid:   %d payments, %s\n\n%s\n",
		heading.Render("Quarter starting "+q.Start.Format(time.DateOnly)),
		q.Issued.Count, money.Format(q.Issued.AmountCents),
		q.Paid.Count, money.Format(q.Paid.AmountCents),
		statusTable("Estimates", q.Estimates, true)+"\n"+
			statusTable("Leads", q.Leads, false)+"\n"+
			statusTable("Work orders", q.WorkOrders, false))

	return err
}

func writeSummary(w io.Writer, s *dashboard.Summary) error {
	revenue := newTable("Month", "Revenue")
	for _, m := range s.Revenue {
		revenue.Row(m.Label, money.Format(m.AmountCents))
	}

	overdue := newTable("Invoice", "Client", "Balance", "Days overdue")
	for _, o := range s.Overdue {
		overdue.Row(o.Invoice.Number, o.ClientName, money.Format(o.BalanceCents()), strconv.Itoa(o.DaysOverdue))
	}

	top := newTable("Client", "Paid", "Invoices")
	for _, c := range s.TopClients {
		top.Row(c.Name, money.Format(c.PaidCents), strconv.FormatInt(c.InvoiceCount, 10))
	}

	_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n%s\n%s\n\n%s\n%s\n\n%s\n%s\n\n%s\n%s\n",
		heading.Render("Dashboard at "+s.GeneratedAt.UTC().Format(time.RFC3339)),
		statusTable("Leads", s.Pipelines.Leads, false),
		statusTable("Estimates", s.Pipelines.Estimates, false),
		statusTable("Work orders", s.Pipelines.WorkOrders, false),
		statusTable("Invoices", s.Pipelines.Invoices, false),
		heading.Render("Revenue"), revenue.String(),
		heading.Render("Overdue"), overdue.String(),
		heading.Render("Top clients"), top.String(),
	)

	return err
}

func statusTable(title string, counts []dashboard.StatusCount, withAmounts bool) string {
	headers := []string{title, "Count"}
	if withAmounts {
		headers = append(headers, "Amount")
	}

	t := newTable(headers...)

	for _, c := range counts {
		row := []string{c.Status, strconv.FormatInt(c.Count, 10)}
		if withAmounts {
			row = append(row, money.Format(c.AmountCents))
		}

		t.Row(row...)
	}

	return t.String()
}
