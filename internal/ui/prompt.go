package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// Prompter asks the operator questions through huh forms.
// Accessible mode falls back to plain line prompts for screen readers and pipes.
type Prompter struct {
	accessible bool
	theme      *huh.Theme
}

// NewPrompter creates a prompter
func NewPrompter(accessible bool) *Prompter {
	return &Prompter{accessible: accessible, theme: NewAppTheme()}
}

func (p *Prompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithAccessible(p.accessible)
	return form.Run()
}

// Confirm asks a yes/no question
func (p *Prompter) Confirm(title, description string) (bool, error) {
	var confirm bool

	err := p.run(huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm))
	if err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return confirm, nil
}

// Input asks for a line of text, re-asking until validate accepts it
func (p *Prompter) Input(title, description string, validate func(string) error) (string, error) {
	var answer string

	input := huh.NewInput().
		Title(title).
		Description(description).
		Value(&answer)
	if validate != nil {
		input = input.Validate(func(s string) error {
			return validate(strings.TrimSpace(sanitizeInput(s)))
		})
	}

	if err := p.run(input); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(sanitizeInput(answer)), nil
}
