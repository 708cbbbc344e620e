package quiz

import (
	qz "github.com/abhisek/examhelper/internal/quiz"
)

// Every message carries the round it belongs to so late arrivals from an
// abandoned round can be dropped.

// questionLoadedMsg is sent when a question request completes.
type questionLoadedMsg struct {
	Round    uint64
	Question qz.Question
	Err      error
}

// answerResultMsg is sent when a submission completes.
type answerResultMsg struct {
	Round  uint64
	Result qz.AnswerResult
	Err    error
}

// feedbackDoneMsg is sent when the feedback delay for a round elapses.
type feedbackDoneMsg struct {
	Round uint64
}

// countdownTickMsg redraws the next-question countdown.
type countdownTickMsg struct {
	Round uint64
}
