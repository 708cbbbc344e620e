package quiz

import (
	"context"
	"strings"
)

// Question is a single multiple-choice question as served by the question
// provider. It is immutable once received.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Validate reports whether the question can be rendered.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuestion
	}
	if len(q.Options) == 0 {
		return ErrEmptyQuestion
	}
	return nil
}

// AnswerResult is the evaluator's verdict on a submitted answer.
type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Submission is the payload sent to the answer evaluator for one round.
type Submission struct {
	Round        uint64 `json:"-"`
	Ordinal      int    `json:"-"`
	Answer       string `json:"answer"`
	QuestionText string `json:"questionText"`
}

// QuestionProvider fetches a random question.
type QuestionProvider interface {
	FetchQuestion(ctx context.Context) (Question, error)
}

// AnswerEvaluator grades a submitted answer.
type AnswerEvaluator interface {
	SubmitAnswer(ctx context.Context, sub Submission) (AnswerResult, error)
}
