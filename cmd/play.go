package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examhelper/internal/app"
	"github.com/abhisek/examhelper/internal/config"
	"github.com/abhisek/examhelper/internal/logging"
	"github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/quizapi"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz session against a question server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("url", "", "Quiz server base URL (overrides EXAMHELPER_URL)")
	f.String("keys", "", "Four answer keys in option order, e.g. asdf (overrides EXAMHELPER_KEYS)")
	f.Duration("feedback-delay", 0, "How long feedback stays up before the next question (overrides EXAMHELPER_FEEDBACK_DELAY)")
	f.Duration("timeout", 0, "Per-request timeout (overrides EXAMHELPER_REQUEST_TIMEOUT)")
	f.Int("attempts", 0, "Question fetch attempts before giving up (overrides EXAMHELPER_FETCH_ATTEMPTS)")
	f.String("log-file", "", "Log file path (overrides EXAMHELPER_LOG_FILE)")
}

// playConfig resolves the quiz config: flags over environment over
// defaults.
func playConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if v, _ := f.GetString("url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := f.GetString("keys"); v != "" {
		cfg.OptionKeys = v
	}
	if v, _ := f.GetDuration("feedback-delay"); v > 0 {
		cfg.FeedbackDelay = v
	}
	if v, _ := f.GetDuration("timeout"); v > 0 {
		cfg.RequestTimeout = v
	}
	if v, _ := f.GetInt("attempts"); v > 0 {
		cfg.Retry.MaxAttempts = v
	}
	if v, _ := f.GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

// runPlay launches the quiz TUI and prints the final score on exit.
func runPlay(cmd *cobra.Command) error {
	cfg, err := playConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	keys, err := quiz.NewKeyMap(cfg.OptionKeys)
	if err != nil {
		return err
	}

	log, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().
		Str("url", cfg.BaseURL).
		Str("keys", keys.Letters()).
		Dur("feedback_delay", cfg.FeedbackDelay).
		Msg("starting quiz")

	client := quizapi.NewFromConfig(cfg, log)
	start := time.Now()
	score, err := app.Run(app.Options{
		Provider:      client,
		Evaluator:     client,
		Keys:          keys,
		FeedbackDelay: cfg.FeedbackDelay,
		Logger:        log,
		Context:       cmd.Context(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), score.Text())
	log.Debug().Dur("duration", time.Since(start)).Msg("quiz exited")
	return nil
}
