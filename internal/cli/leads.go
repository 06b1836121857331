package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// LeadsOptions holds flags for the leads commands.
type LeadsOptions struct {
	*RootOptions
	Source string
}

func NewLeadsCommand(root *RootOptions) *cobra.Command {
	opts := &LeadsOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Lead maintenance",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create leads from a CSV export",
		Long: `Create one lead per row of a CSV file.

The header row is found automatically and must name a name column and an email
or phone column. Comma and semicolon separators and the usual spreadsheet
encodings are accepted. Rows that fail validation are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd, args[0])
		},
	}
	importCmd.Flags().StringVar(&opts.Source, "source", "csv-import", "source recorded on rows without one")

	cmd.AddCommand(importCmd)

	return cmd
}

type importOutput struct {
	Created  int              `json:"created" yaml:"created"`
	Rejected []rejectedOutput `json:"rejected" yaml:"rejected"`
}

type rejectedOutput struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
}

func runImport(opts *LeadsOptions, cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	svc, err := opts.backend()
	if err != nil {
		return err
	}

	res, err := svc.Importer.Import(opts.context(cmd), f, opts.Source)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	out := importOutput{Created: len(res.Created), Rejected: make([]rejectedOutput, len(res.Rejected))}
	for i, r := range res.Rejected {
		out.Rejected[i] = rejectedOutput{Line: r.Line, Reason: r.Reason}
	}

	return render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
		for _, r := range out.Rejected {
			if _, err := fmt.Fprintf(w, "line %d: %s\n", r.Line, r.Reason); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, "%d lead(s) created, %d row(s) rejected\n", out.Created, len(out.Rejected))

		return err
	})
}
