package quiz

import (
	"strings"
)

// Phase is the controller's position in the round cycle.
type Phase int

const (
	PhaseIdle              Phase = iota // Nothing requested yet
	PhaseAwaitingQuestion               // Question request in flight (or failed)
	PhaseAwaitingSelection              // Options rendered, waiting for input
	PhaseAwaitingResult                 // Answer submitted, waiting for verdict
	PhaseShowingFeedback                // Verdict rendered, next round scheduled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingQuestion:
		return "awaiting-question"
	case PhaseAwaitingSelection:
		return "awaiting-selection"
	case PhaseAwaitingResult:
		return "awaiting-result"
	case PhaseShowingFeedback:
		return "showing-feedback"
	}
	return "unknown"
}

// OptionMark is the feedback state of a single rendered option.
type OptionMark int

const (
	MarkNone            OptionMark = iota
	MarkChosenCorrect              // chosen and correct
	MarkChosenIncorrect            // chosen but wrong
	MarkCorrect                    // not chosen, but the canonical answer
)

// Controller is the round state machine. It performs no I/O: callers issue
// requests for the round returned by BeginRound and report the outcome back
// with the same round ID. Outcomes for any other round are rejected.
type Controller struct {
	phase    Phase
	round    uint64
	question Question
	chosen   int
	correct  int
	result   AnswerResult
	score    ScoreState
}

// NewController creates a controller in the Idle phase, continuing from the
// given score.
func NewController(score ScoreState) *Controller {
	return &Controller{
		score:   score,
		chosen:  -1,
		correct: -1,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Round returns the current round ID. It is zero before the first round.
func (c *Controller) Round() uint64 { return c.round }

// Score returns the running score.
func (c *Controller) Score() ScoreState { return c.score }

// Question returns the question of the current round. It is the zero value
// until the round's question has loaded.
func (c *Controller) Question() Question { return c.question }

// Result returns the verdict of the current round, valid in ShowingFeedback.
func (c *Controller) Result() AnswerResult { return c.result }

// Chosen returns the ordinal submitted this round, or -1.
func (c *Controller) Chosen() int { return c.chosen }

// BeginRound starts a new round and returns its ID. The previous question
// and marks are cleared. Calling it while a submission is outstanding
// abandons that submission.
func (c *Controller) BeginRound() uint64 {
	c.round++
	c.phase = PhaseAwaitingQuestion
	c.question = Question{}
	c.chosen = -1
	c.correct = -1
	c.result = AnswerResult{}
	return c.round
}

// QuestionLoaded installs the question for round and moves to
// AwaitingSelection.
func (c *Controller) QuestionLoaded(round uint64, q Question) error {
	if round != c.round || c.phase != PhaseAwaitingQuestion {
		return ErrStaleRound
	}
	if err := q.Validate(); err != nil {
		return err
	}
	c.question = q
	c.phase = PhaseAwaitingSelection
	return nil
}

// QuestionFailed records that the request for round failed. The controller
// stays in AwaitingQuestion. It reports whether round is current.
func (c *Controller) QuestionFailed(round uint64) bool {
	return round == c.round && c.phase == PhaseAwaitingQuestion
}

// Submit selects the option at ordinal and moves to AwaitingResult. Only one
// submission is accepted per rendered question.
func (c *Controller) Submit(ordinal int) (Submission, error) {
	if c.phase != PhaseAwaitingSelection {
		return Submission{}, ErrNotAcceptingAnswers
	}
	if ordinal < 0 || ordinal >= len(c.question.Options) {
		return Submission{}, ErrNoSuchOption
	}
	c.chosen = ordinal
	c.phase = PhaseAwaitingResult
	return Submission{
		Round:        c.round,
		Ordinal:      ordinal,
		Answer:       c.question.Options[ordinal],
		QuestionText: c.question.Text,
	}, nil
}

// ResultReceived applies the verdict for round, records it in the score and
// moves to ShowingFeedback.
func (c *Controller) ResultReceived(round uint64, r AnswerResult) error {
	if round != c.round || c.phase != PhaseAwaitingResult {
		return ErrStaleRound
	}
	c.result = r
	c.correct = resolveCorrectIndex(c.question.Options, r, c.chosen)
	c.score = c.score.Record(r.IsCorrect)
	c.phase = PhaseShowingFeedback
	return nil
}

// SubmitFailed reverts a failed submission for round back to
// AwaitingSelection so the learner can answer again. It reports whether the
// revert applied.
func (c *Controller) SubmitFailed(round uint64) bool {
	if round != c.round || c.phase != PhaseAwaitingResult {
		return false
	}
	c.chosen = -1
	c.phase = PhaseAwaitingSelection
	return true
}

// Mark returns the feedback mark for the option at ordinal. A chosen option
// that equals the declared correct answer is marked correct even when the
// verdict says otherwise; the score still follows the verdict.
func (c *Controller) Mark(ordinal int) OptionMark {
	if c.phase != PhaseShowingFeedback {
		return MarkNone
	}
	switch {
	case ordinal == c.chosen && (c.result.IsCorrect || ordinal == c.correct):
		return MarkChosenCorrect
	case ordinal == c.chosen:
		return MarkChosenIncorrect
	case ordinal == c.correct:
		return MarkCorrect
	}
	return MarkNone
}

// resolveCorrectIndex locates the canonical answer among the options. The
// evaluator normally echoes the option text; a bare option letter is also
// understood.
func resolveCorrectIndex(options []string, r AnswerResult, chosen int) int {
	want := strings.TrimSpace(r.CorrectAnswer)
	for i, opt := range options {
		if strings.TrimSpace(opt) == want {
			return i
		}
	}
	if len(want) == 1 {
		idx := int(strings.ToUpper(want)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return idx
		}
	}
	if r.IsCorrect {
		return chosen
	}
	return -1
}
