package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mrz1836/workon/internal/errors"
)

// Prompter asks yes/no questions on the terminal.
type Prompter struct {
	// Accessible switches huh to its screen-reader friendly mode.
	Accessible bool
	// IsTerminal reports whether stdin can answer prompts.
	IsTerminal func() bool
}

// NewPrompter creates a Prompter bound to stdin.
func NewPrompter(accessible bool) *Prompter {
	return &Prompter{
		Accessible: accessible,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// Theme returns the huh theme built from the semantic colors.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// Confirm asks question and defaults to No. It returns
// ErrInteractiveRequired when stdin is not a terminal and ErrMenuCanceled
// when the user aborts.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.IsTerminal == nil || !p.IsTerminal() {
		return false, errors.Wrapf(errors.ErrInteractiveRequired, "%q", question)
	}

	var confirmed bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithAccessible(p.Accessible).
		WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, errors.ErrMenuCanceled
		}
		return false, errors.Wrap(err, "confirm prompt failed")
	}
	return confirmed, nil
}
