package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/ui/theme"
)

// MaxOptions is the number of options reachable by digit keys.
const MaxOptions = 9

// OptionList renders a question's options with a movable cursor. It only
// tracks presentation; the chosen option is set by the caller.
type OptionList struct {
	Options  []string
	Cursor   int
	Chosen   string
	Locked   bool
	Disabled bool
}

// NewOptionList creates an option list with the cursor on the first option.
func NewOptionList(options []string) OptionList {
	return OptionList{Options: options}
}

// Update moves the cursor on up/k and down/j.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if o.Disabled {
		return o, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	}
	return o, nil
}

// AtCursor returns the option under the cursor.
func (o OptionList) AtCursor() (string, bool) {
	if o.Cursor < 0 || o.Cursor >= len(o.Options) {
		return "", false
	}
	return o.Options[o.Cursor], true
}

// ForDigit returns the option for a "1".."9" key.
func (o OptionList) ForDigit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	i := int(key[0] - '1')
	if i >= len(o.Options) || i >= MaxOptions {
		return 0, false
	}
	return i, true
}

// View renders the options, one per line.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Cursor && !o.Disabled {
			prefix = "▸ "
		}
		mark := "○"
		if opt == o.Chosen {
			mark = "●"
		}

		label := fmt.Sprintf("%d", i+1)
		if i >= MaxOptions {
			label = " "
		}
		line := fmt.Sprintf("%s%s) %s %s", prefix, label, mark, opt)

		var style lipgloss.Style
		switch {
		case o.Disabled:
			style = theme.Disabled
		case opt == o.Chosen:
			style = theme.Chosen
		case i == o.Cursor:
			style = theme.Cursor
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if o.Locked {
		b.WriteString(theme.Hint.Render("  answer locked"))
		b.WriteString("\n")
	}
	return b.String()
}
