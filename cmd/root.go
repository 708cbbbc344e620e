package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "examhelper",
	Short: "Terminal exam practice",
	Long:  "examhelper: multiple-choice exam practice in the terminal, with a bundled question server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides EXAMHELPER_LOG_LEVEL)")
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(versionCmd)
}
