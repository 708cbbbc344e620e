package quiz

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"
	"github.com/rs/zerolog"

	qz "github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/router"
	"github.com/abhisek/examhelper/internal/screen"
	"github.com/abhisek/examhelper/internal/screens/summary"
	"github.com/abhisek/examhelper/internal/ui/layout"
)

// DefaultFeedbackDelay is how long feedback stays up before the next
// question is requested.
const DefaultFeedbackDelay = 3 * time.Second

const countdownInterval = 250 * time.Millisecond

// Config holds the collaborators of a QuizScreen.
type Config struct {
	Provider      qz.QuestionProvider
	Evaluator     qz.AnswerEvaluator
	Keys          qz.KeyMap
	FeedbackDelay time.Duration
	Logger        zerolog.Logger
	Context       context.Context

	// Score is the starting score, normally zero.
	Score qz.ScoreState
}

// QuizScreen drives one quiz session: it runs the round loop of the
// controller and renders the current round.
type QuizScreen struct {
	ctrl      *qz.Controller
	provider  qz.QuestionProvider
	evaluator qz.AnswerEvaluator
	keys      qz.KeyMap
	delay     time.Duration
	log       zerolog.Logger
	ctx       context.Context

	cursor        int
	confirmQuit   bool
	fetchFailed   bool
	notice        string
	feedbackStart time.Time
	now           func() time.Time
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.ScoreProvider = (*QuizScreen)(nil)

// New creates a QuizScreen. Zero-valued Keys, FeedbackDelay and Context
// fall back to the defaults.
func New(cfg Config) *QuizScreen {
	keys := cfg.Keys
	if keys.IsZero() {
		keys = qz.DefaultKeyMap()
	}
	delay := cfg.FeedbackDelay
	if delay <= 0 {
		delay = DefaultFeedbackDelay
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &QuizScreen{
		ctrl:      qz.NewController(cfg.Score),
		provider:  cfg.Provider,
		evaluator: cfg.Evaluator,
		keys:      keys,
		delay:     delay,
		log:       cfg.Logger,
		ctx:       ctx,
		now:       time.Now,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.loadQuestion()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

// Score returns the running score.
func (s *QuizScreen) Score() qz.ScoreState {
	return s.ctrl.Score()
}

// Phase returns the controller phase.
func (s *QuizScreen) Phase() qz.Phase {
	return s.ctrl.Phase()
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}

	switch s.ctrl.Phase() {
	case qz.PhaseAwaitingQuestion:
		if s.fetchFailed {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Retry"},
				{Key: "Esc", Description: "Quit"},
			}
		}
	case qz.PhaseAwaitingSelection:
		letters := strings.ToUpper(strings.Join(strings.Split(s.keys.Letters(), ""), "/"))
		return []layout.KeyHint{
			{Key: letters, Description: "Answer"},
			{Key: "↑↓", Description: "Move"},
			{Key: "Enter", Description: "Answer highlighted"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Quit"},
		{Key: "Ctrl+C", Description: "Exit now"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionLoadedMsg:
		return s.handleQuestionLoaded(msg)

	case answerResultMsg:
		return s.handleAnswerResult(msg)

	case feedbackDoneMsg:
		if msg.Round != s.ctrl.Round() || s.ctrl.Phase() != qz.PhaseShowingFeedback {
			return s, nil
		}
		return s, s.loadQuestion()

	case countdownTickMsg:
		if msg.Round != s.ctrl.Round() || s.ctrl.Phase() != qz.PhaseShowingFeedback {
			return s, nil
		}
		return s, s.countdownTick(msg.Round)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// loadQuestion starts a new round and requests its question.
func (s *QuizScreen) loadQuestion() tea.Cmd {
	round := s.ctrl.BeginRound()
	s.cursor = 0
	s.fetchFailed = false
	s.notice = ""
	s.log.Debug().Uint64("round", round).Msg("requesting question")

	provider, ctx := s.provider, s.ctx
	return func() tea.Msg {
		q, err := provider.FetchQuestion(ctx)
		return questionLoadedMsg{Round: round, Question: q, Err: err}
	}
}

func (s *QuizScreen) handleQuestionLoaded(msg questionLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if !s.ctrl.QuestionFailed(msg.Round) {
			s.log.Debug().Uint64("round", msg.Round).Msg("dropping stale question failure")
			return s, nil
		}
		s.log.Error().Err(msg.Err).Uint64("round", msg.Round).Msg("question fetch failed")
		s.fetchFailed = true
		s.notice = "Could not load a question. Press Enter to try again."
		return s, nil
	}

	err := s.ctrl.QuestionLoaded(msg.Round, msg.Question)
	switch {
	case errors.Is(err, qz.ErrStaleRound):
		s.log.Debug().Uint64("round", msg.Round).Msg("dropping stale question")
	case err != nil:
		s.log.Error().Err(err).Uint64("round", msg.Round).Msg("malformed question")
		s.fetchFailed = true
		s.notice = "Received an invalid question. Press Enter to try again."
	default:
		s.log.Info().
			Uint64("round", msg.Round).
			Str("question", msg.Question.Text).
			Int("options", len(msg.Question.Options)).
			Msg("question shown")
	}
	return s, nil
}

// submit sends the option at ordinal for evaluation. Anything outside the
// selection phase is ignored by the controller.
func (s *QuizScreen) submit(ordinal int) tea.Cmd {
	sub, err := s.ctrl.Submit(ordinal)
	if err != nil {
		s.log.Debug().Err(err).Int("ordinal", ordinal).Str("phase", s.ctrl.Phase().String()).Msg("submission ignored")
		return nil
	}
	s.cursor = ordinal
	s.notice = ""
	s.log.Debug().Uint64("round", sub.Round).Str("answer", sub.Answer).Msg("submitting answer")

	evaluator, ctx := s.evaluator, s.ctx
	return func() tea.Msg {
		res, err := evaluator.SubmitAnswer(ctx, sub)
		return answerResultMsg{Round: sub.Round, Result: res, Err: err}
	}
}

func (s *QuizScreen) handleAnswerResult(msg answerResultMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if !s.ctrl.SubmitFailed(msg.Round) {
			s.log.Debug().Uint64("round", msg.Round).Msg("dropping stale submit failure")
			return s, nil
		}
		s.log.Error().Err(msg.Err).Uint64("round", msg.Round).Msg("answer submission failed")
		s.notice = "Could not submit your answer. Please choose again."
		return s, nil
	}

	if err := s.ctrl.ResultReceived(msg.Round, msg.Result); err != nil {
		s.log.Debug().Uint64("round", msg.Round).Msg("dropping stale result")
		return s, nil
	}

	score := s.ctrl.Score()
	s.log.Info().
		Uint64("round", msg.Round).
		Bool("correct", msg.Result.IsCorrect).
		Int("score_correct", score.Correct).
		Int("score_total", score.Total).
		Msg("answer graded")

	s.feedbackStart = s.now()
	return s, tea.Batch(s.feedbackTimer(msg.Round), s.countdownTick(msg.Round))
}

// feedbackTimer fires once the feedback delay for round has elapsed,
// whatever the verdict was.
func (s *QuizScreen) feedbackTimer(round uint64) tea.Cmd {
	return tea.Tick(s.delay, func(time.Time) tea.Msg {
		return feedbackDoneMsg{Round: round}
	})
}

func (s *QuizScreen) countdownTick(round uint64) tea.Cmd {
	return tea.Tick(countdownInterval, func(time.Time) tea.Msg {
		return countdownTickMsg{Round: round}
	})
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.endSession()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key.Matches(msg, s.keys.Quit) {
		s.confirmQuit = true
		return s, nil
	}

	switch s.ctrl.Phase() {
	case qz.PhaseAwaitingQuestion:
		if s.fetchFailed && key.Matches(msg, s.keys.Submit) {
			return s, s.loadQuestion()
		}

	case qz.PhaseAwaitingSelection:
		n := len(s.ctrl.Question().Options)
		switch {
		case key.Matches(msg, s.keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, s.keys.Down):
			if s.cursor < n-1 {
				s.cursor++
			}
		case key.Matches(msg, s.keys.Submit):
			return s, s.submit(s.cursor)
		default:
			if ord, ok := s.keys.Route(msg, n); ok {
				return s, s.submit(ord)
			}
		}
	}
	return s, nil
}

// endSession swaps the quiz for the session summary.
func (s *QuizScreen) endSession() tea.Cmd {
	score := s.ctrl.Score()
	s.log.Info().Int("correct", score.Correct).Int("total", score.Total).Msg("quiz ended")
	next := summary.New(score)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}
