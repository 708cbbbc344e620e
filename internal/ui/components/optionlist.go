package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examhelper/internal/quiz"
	"github.com/abhisek/examhelper/internal/ui/theme"
)

// OptionList renders the options of a question with their key labels. An
// empty label renders the option untagged.
// It holds no input state of its own; the owning screen decides which
// option is highlighted and how each is marked after grading.
type OptionList struct {
	Options []string
	Labels  []string
	Cursor  int
	Locked  bool
	Mark    func(ordinal int) quiz.OptionMark
}

// View renders one line per option.
func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		label := ""
		if i < len(o.Labels) {
			label = o.Labels[i]
		}

		prefix := "  "
		if i == o.Cursor && !o.Locked {
			prefix = "▸ "
		}

		// Options without a key are reachable by cursor only.
		tag := "    "
		if label != "" {
			tag = label + ")  "
		}
		line := prefix + tag + opt
		suffix := ""

		style := theme.Unselected
		mark := quiz.MarkNone
		if o.Mark != nil {
			mark = o.Mark(i)
		}
		switch {
		case mark == quiz.MarkChosenCorrect:
			style = theme.Correct
			suffix = "  ✓ your answer"
		case mark == quiz.MarkChosenIncorrect:
			style = theme.Incorrect
			suffix = "  ✗ your answer"
		case mark == quiz.MarkCorrect:
			style = theme.Correct
			suffix = "  ✓ correct"
		case o.Locked:
			style = theme.Faded
		case i == o.Cursor:
			style = theme.Highlighted
		}

		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(style.Render(line + suffix)))
		if i < len(o.Options)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
