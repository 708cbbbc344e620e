package quiz

import "fmt"

// ScoreState holds the running tally for one session. The zero value is an
// empty score. Correct never exceeds Total.
type ScoreState struct {
	Correct int
	Total   int
}

// Record returns the score after one more answered question.
func (s ScoreState) Record(isCorrect bool) ScoreState {
	s.Total++
	if isCorrect {
		s.Correct++
	}
	return s
}

// Text renders the score line shown in the header.
func (s ScoreState) Text() string {
	return fmt.Sprintf("Score: %d out of %d", s.Correct, s.Total)
}

// Accuracy returns Correct/Total, or 0 before the first answer.
func (s ScoreState) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}
