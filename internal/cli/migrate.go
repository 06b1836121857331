package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

func NewMigrateCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := root.database()
			if err != nil {
				return err
			}

			if err := database.Migrate(db); err != nil {
				return err
			}

			return printVersion(root, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}

				steps = n
			}

			db, err := root.database()
			if err != nil {
				return err
			}

			if err := database.MigrateDown(db, steps); err != nil {
				return err
			}

			return printVersion(root, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(root, cmd)
		},
	})

	return cmd
}

func printVersion(root *RootOptions, cmd *cobra.Command) error {
	db, err := root.database()
	if err != nil {
		return err
	}

	version, dirty, err := database.Version(db)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)

	return err
}
