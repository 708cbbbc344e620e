package quiz

import "errors"

var (
	// ErrNotAcceptingAnswers is returned when a submission arrives outside
	// the AwaitingSelection phase.
	ErrNotAcceptingAnswers = errors.New("quiz: not accepting answers")

	// ErrNoSuchOption is returned when the ordinal is outside the rendered options.
	ErrNoSuchOption = errors.New("quiz: no such option")

	// ErrStaleRound is returned when a response belongs to an earlier round.
	ErrStaleRound = errors.New("quiz: stale round")

	// ErrEmptyQuestion is returned for a question with no text or no options.
	ErrEmptyQuestion = errors.New("quiz: question has no text or options")
)
