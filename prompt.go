package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// Prompter asks the operator questions.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)
	// Select asks to pick one of `options` and returns its index.
	Select(question string, options []string) (int, error)
	// Text asks for free text input.
	Text(question string) (string, error)
}

type ptermPrompter struct{}

func (ptermPrompter) Confirm(question string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(question)
}

func (ptermPrompter) Select(question string, options []string) (int, error) {
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(len(options)).
		Show(question)
	if err != nil {
		return 0, err
	}
	index := slices.Index(options, choice)
	if index == -1 {
		return 0, fmt.Errorf("invalid choice: %s", choice)
	}
	return index, nil
}

func (ptermPrompter) Text(question string) (string, error) {
	s, err := pterm.DefaultInteractiveTextInput.Show(question)
	return strings.TrimSpace(s), err
}

// askInt asks for a positive integer.
func askInt(p Prompter, question string) (int, error) {
	s, err := p.Text(question)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	return n, nil
}
