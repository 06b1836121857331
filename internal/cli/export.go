package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

func NewExportCommand(root *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:       "export <kind>",
		Short:     "Write records as CSV",
		Long:      "Write every record of a kind (leads, estimates, work_orders, invoices, payments) as CSV.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"leads", "estimates", "work_orders", "invoices", "payments"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "file to write; stdout when empty")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command, rawKind string) (err error) {
	kind, err := export.ParseKind(rawKind)
	if err != nil {
		return err
	}

	svc, err := opts.backend()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()

	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.Output, err)
		}

		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()

		w = f
	}

	return svc.Exports.Write(opts.context(cmd), kind, w)
}
