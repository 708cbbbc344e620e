package app

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/router"
	"github.com/abhisek/examhelper/internal/screen"
	quizscreen "github.com/abhisek/examhelper/internal/screens/quiz"
	"github.com/abhisek/examhelper/internal/ui/layout"
)

// Options configures a quiz session.
type Options struct {
	Provider      quiz.QuestionProvider
	Evaluator     quiz.AnswerEvaluator
	Keys          quiz.KeyMap
	FeedbackDelay time.Duration
	Logger        zerolog.Logger
	Context       context.Context
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the quiz screen.
func newAppModel(opts Options) AppModel {
	qs := quizscreen.New(quizscreen.Config{
		Provider:      opts.Provider,
		Evaluator:     opts.Evaluator,
		Keys:          opts.Keys,
		FeedbackDelay: opts.FeedbackDelay,
		Logger:        opts.Logger,
		Context:       opts.Context,
	})
	return AppModel{
		router: router.New(qs),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// Score returns the session score held by the active screen.
func (m AppModel) Score() quiz.ScoreState {
	if sp, ok := m.router.Active().(screen.ScoreProvider); ok {
		return sp.Score()
	}
	return quiz.ScoreState{}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current window size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.Score().Text(), m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the learner quits. It
// returns the final score.
func Run(opts Options) (quiz.ScoreState, error) {
	if opts.Provider == nil || opts.Evaluator == nil {
		return quiz.ScoreState{}, fmt.Errorf("app: question provider and answer evaluator are required")
	}

	sessionID := uuid.NewString()
	opts.Logger = opts.Logger.With().Str("session", sessionID).Logger()
	opts.Logger.Info().Msg("quiz session started")

	p := tea.NewProgram(newAppModel(opts))
	final, err := p.Run()
	if err != nil {
		opts.Logger.Error().Err(err).Msg("program exited with error")
		return quiz.ScoreState{}, fmt.Errorf("running program: %w", err)
	}

	score := quiz.ScoreState{}
	if am, ok := final.(AppModel); ok {
		score = am.Score()
	}
	opts.Logger.Info().Int("correct", score.Correct).Int("total", score.Total).Msg("quiz session finished")
	return score, nil
}
