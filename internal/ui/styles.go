// Package ui holds the lipgloss styles for interactive session
// rendering, with TTY detection deciding whether color is applied.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette - single cyan accent.
const (
	ColorCyan     = "51"  // Primary accent - prompts, headers
	ColorCyanDim  = "30"  // Dimmed accent for captions
	ColorWhite    = "255" // Result titles
	ColorGray     = "245" // Snippets, secondary text
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
	ColorGreen    = "82"  // Success, scores
)

// Styles holds the styles used by the interactive display.
type Styles struct {
	Header  lipgloss.Style
	Prompt  lipgloss.Style
	Title   lipgloss.Style
	URL     lipgloss.Style
	Snippet lipgloss.Style
	Score   lipgloss.Style
	Caption lipgloss.Style
	Tag     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		URL:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyanDim)).Underline(true),
		Snippet: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Caption: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyanDim)),
		Tag:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Prompt:  lipgloss.NewStyle(),
		Title:   lipgloss.NewStyle(),
		URL:     lipgloss.NewStyle(),
		Snippet: lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Caption: lipgloss.NewStyle(),
		Tag:     lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// GetStyles returns colored styles when stdout is a terminal and
// color is not disabled.
func GetStyles(noColor bool) Styles {
	if noColor || !isTerminal() {
		return NoColorStyles()
	}
	return DefaultStyles()
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
