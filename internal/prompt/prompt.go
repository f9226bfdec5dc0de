// Package prompt provides interactive secret entry for credential
// setup. The prompt blocks on operator input with no timeout and
// never echoes the value.
package prompt

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Interactive reads secrets from the terminal via a masked huh input.
type Interactive struct{}

// Secret displays a masked input with the given title and returns the
// entered value. Interrupting the prompt is a fatal abort for the
// caller, not a recoverable condition.
func (Interactive) Secret(title string) (string, error) {
	var secret string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&secret),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}

	return secret, nil
}
