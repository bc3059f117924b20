package cli

import (
	"github.com/pterm/pterm"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/packer"
)

// terminalPrompter asks through pterm's interactive printers.
type terminalPrompter struct{}

var _ packer.Prompter = terminalPrompter{}

func (terminalPrompter) Choose(message string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(10).
		Show(message)
}

func (terminalPrompter) Input(message, defaultValue string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(defaultValue).
		Show(message)
}

func (terminalPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultValue).
		Show(message)
}
