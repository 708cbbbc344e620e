package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/abhisek/examhelper/internal/bank"
	"github.com/abhisek/examhelper/internal/config"
	"github.com/abhisek/examhelper/internal/logging"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage question banks",
}

var bankImportCmd = &cobra.Command{
	Use:   "import <questions-file> <db>",
	Short: "Import a questions file into a SQLite bank",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		log, err := logging.Console(os.Stderr, level)
		if err != nil {
			return err
		}

		entries, err := loadQuestions(args[0], log)
		if err != nil {
			return err
		}

		if err := config.EnsureDir(args[1]); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
		db, err := bank.OpenSQLite(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Import(cmd.Context(), entries)
		if err != nil {
			return err
		}
		total, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions (%d in bank)\n", n, total)
		return nil
	},
}

var bankCheckCmd = &cobra.Command{
	Use:   "check <questions-file>",
	Short: "Validate a questions file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := bank.ParseFile(args[0])
		var skipped *multierror.Error
		if err != nil && !errors.As(err, &skipped) {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d questions OK\n", len(entries))
		if skipped != nil {
			fmt.Fprintf(out, "%d blocks skipped:\n%s\n", len(skipped.Errors), formatSkipped(err))
			return fmt.Errorf("%s: %d invalid blocks", args[0], len(skipped.Errors))
		}
		return nil
	},
}

var bankStatsCmd = &cobra.Command{
	Use:   "stats <db>",
	Short: "Show question bank statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("open bank: %w", err)
		}
		db, err := bank.OpenSQLite(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Questions: %d\n", n)
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankCheckCmd)
	bankCmd.AddCommand(bankStatsCmd)
}
