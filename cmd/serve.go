package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/examhelper/internal/bank"
	"github.com/abhisek/examhelper/internal/config"
	"github.com/abhisek/examhelper/internal/logging"
	"github.com/abhisek/examhelper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve questions from a questions file or bank database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := serverConfig(cmd)

		log, err := logging.Console(os.Stderr, cfg.Log.Level)
		if err != nil {
			return err
		}

		b, closeBank, err := openBank(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer closeBank()

		n, err := b.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}
		if n == 0 {
			log.Warn().Msg("question bank is empty; /get_question will return 503")
		}
		log.Info().Int("questions", n).Strs("cors", cfg.CORSOrigins).Msg("question bank ready")

		return server.New(b, log, cfg.CORSOrigins).ListenAndServe(cmd.Context(), cfg.Addr)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "Listen address (overrides EXAMHELPER_ADDR)")
	f.String("questions", "", "Questions file (overrides EXAMHELPER_QUESTIONS)")
	f.String("db", "", "SQLite question bank; used instead of the questions file (overrides EXAMHELPER_DB)")
	f.String("cors", "", "Comma-separated CORS origins (overrides EXAMHELPER_CORS_ORIGINS)")
}

func serverConfig(cmd *cobra.Command) config.ServerConfig {
	cfg := config.ServerFromEnv()
	f := cmd.Flags()
	if v, _ := f.GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := f.GetString("questions"); v != "" {
		cfg.QuestionsPath = v
	}
	if v, _ := f.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := f.GetString("cors"); v != "" {
		cfg.CORSOrigins = config.SplitCSV(v)
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg
}

// openBank opens the SQLite bank when a database is configured, otherwise
// loads the questions file into memory.
func openBank(ctx context.Context, cfg config.ServerConfig, log zerolog.Logger) (bank.Bank, func(), error) {
	if cfg.DBPath != "" {
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err := bank.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("db", cfg.DBPath).Msg("using sqlite question bank")
		return db, func() { db.Close() }, nil
	}

	entries, err := loadQuestions(cfg.QuestionsPath, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("file", cfg.QuestionsPath).Msg("using in-memory question bank")
	return bank.NewMemory(entries), func() {}, nil
}

// loadQuestions parses a questions file, logging skipped blocks.
func loadQuestions(path string, log zerolog.Logger) ([]bank.Entry, error) {
	entries, err := bank.ParseFile(path)
	var skipped *multierror.Error
	if errors.As(err, &skipped) {
		for _, e := range skipped.Errors {
			log.Warn().Err(e).Str("file", path).Msg("skipped question block")
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func formatSkipped(err error) string {
	var skipped *multierror.Error
	if !errors.As(err, &skipped) {
		return err.Error()
	}
	lines := make([]string, 0, len(skipped.Errors))
	for _, e := range skipped.Errors {
		lines = append(lines, "  "+e.Error())
	}
	return strings.Join(lines, "\n")
}
