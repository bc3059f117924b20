package config

import (
	"strings"
)

// GenerateConfigContent returns the defaults with every assignment
// commented out, ready to be saved as a settings file.
func GenerateConfigContent() string {
	lines := strings.Split(DefaultsContent(), "\n")
	out := make([]string, 0, len(lines))
	inArray := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			out = append(out, line)
		case !inArray && strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			out = append(out, line)
		default:
			out = append(out, "# "+line)
			if strings.HasSuffix(trimmed, "[") {
				inArray = true
			} else if inArray && strings.HasPrefix(trimmed, "]") {
				inArray = false
			}
		}
	}
	return strings.Join(out, "\n")
}
