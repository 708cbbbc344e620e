package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/ui/layout"
)

// Screen is a full-window view managed by the router.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ScoreProvider is implemented by screens that carry the session score. The
// app shows it in the header and reports it on exit.
type ScoreProvider interface {
	Score() quiz.ScoreState
}
