package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/screen"
	"github.com/abhisek/examhelper/internal/ui/components"
	"github.com/abhisek/examhelper/internal/ui/layout"
	"github.com/abhisek/examhelper/internal/ui/theme"
)

// SummaryScreen displays the end-of-session score.
type SummaryScreen struct {
	score quiz.ScoreState
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.ScoreProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(score quiz.ScoreState) *SummaryScreen {
	return &SummaryScreen{score: score}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) Score() quiz.ScoreState {
	return s.score
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Exit"},
		{Key: "Esc", Description: "Exit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	center := func(st lipgloss.Style, text string) string {
		return st.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Session complete!"))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), s.score.Text()))
	b.WriteString("\n\n")

	if s.score.Total == 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "No questions answered."))
		return b.String()
	}

	missed := s.score.Total - s.score.Correct
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("Correct: %d        Missed: %d", s.score.Correct, missed)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accuracy", s.score.Accuracy(), true, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	return b.String()
}
