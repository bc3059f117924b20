package topics

import "github.com/charmbracelet/glamour"

// Renderer formats topic content for the terminal.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer returns content as-is.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}

// GlamourRenderer renders markdown with glamour. Other formats pass through.
type GlamourRenderer struct {
	Style string // "auto", "notty", a builtin style name or a style file
	Width int
}

// NewGlamourRenderer picks the style for the current terminal. Without a
// terminal it falls back to plain notty output.
func NewGlamourRenderer(tty bool) *GlamourRenderer {
	style := "auto"
	if !tty {
		style = "notty"
	}
	return &GlamourRenderer{Style: style, Width: 80}
}

func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	case "notty", "dark", "light", "dracula", "ascii":
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
