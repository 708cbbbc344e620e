package quiz

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	qz "github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/ui/components"
	"github.com/abhisek/examhelper/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return s.renderQuitConfirm(width, height)
	}

	switch s.ctrl.Phase() {
	case qz.PhaseIdle, qz.PhaseAwaitingQuestion:
		return s.renderWaiting(width, height)
	}

	var b strings.Builder
	inner := max(width-8, 20)

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(4).Render(
		theme.Question.Width(inner).Render(s.ctrl.Question().Text)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(s.optionList().View(inner)))
	b.WriteString("\n\n")

	switch s.ctrl.Phase() {
	case qz.PhaseAwaitingResult:
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(theme.Hint.Render("Checking answer...")))
	case qz.PhaseShowingFeedback:
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(s.renderFeedback(inner)))
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(theme.Warning.Render(s.notice)))
	}

	return b.String()
}

func (s *QuizScreen) optionList() components.OptionList {
	opts := s.ctrl.Question().Options
	labels := make([]string, len(opts))
	for i := range opts {
		labels[i] = s.keys.Label(i)
	}
	return components.OptionList{
		Options: opts,
		Labels:  labels,
		Cursor:  s.cursor,
		Locked:  s.ctrl.Phase() != qz.PhaseAwaitingSelection,
		Mark:    s.ctrl.Mark,
	}
}

func (s *QuizScreen) renderFeedback(width int) string {
	res := s.ctrl.Result()

	var b strings.Builder
	if res.IsCorrect {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite"))
		if res.CorrectAnswer != "" {
			b.WriteString("\n")
			b.WriteString(theme.Body.Render(fmt.Sprintf("Correct answer: %s", res.CorrectAnswer)))
		}
	}

	if res.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Card.Width(width).Render(
			theme.Hint.Render("Explanation") + "\n" + theme.Body.Render(res.Explanation)))
	}

	elapsed := s.now().Sub(s.feedbackStart)
	remaining := max(s.delay-elapsed, 0)
	secs := int(math.Ceil(remaining.Seconds()))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("Next question in %ds", secs),
		float64(elapsed)/float64(s.delay),
		false,
		min(width, 60),
	).View())

	return b.String()
}

func (s *QuizScreen) renderWaiting(width, height int) string {
	msg := theme.Hint.Render("Loading question...")
	if s.fetchFailed {
		msg = theme.Warning.Render(s.notice)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}

func (s *QuizScreen) renderQuitConfirm(width, height int) string {
	body := theme.Question.Render("End the quiz?") + "\n\n" +
		theme.Body.Render(s.ctrl.Score().Text()) + "\n\n" +
		theme.Hint.Render("Y to end, N to keep going")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Render(body))
}
