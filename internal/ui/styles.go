package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme colors.
const (
	colorAccent = lipgloss.Color("#FF8C42")
	colorWarm   = lipgloss.Color("#FFB84D")
	colorText   = lipgloss.Color("#FFFFFF")
	colorMuted  = lipgloss.Color("#6B7280")
	colorError  = lipgloss.Color("#FF4757")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	LinkStyle = lipgloss.NewStyle().
			Foreground(colorWarm).
			Underline(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(colorText)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(colorWarm).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorWarm).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().Foreground(colorAccent)
)

func pickerStyles() filepicker.Styles {
	s := filepicker.DefaultStyles()
	s.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	s.Symlink = lipgloss.NewStyle().Foreground(colorWarm)
	s.Directory = lipgloss.NewStyle().Foreground(colorWarm)
	s.File = lipgloss.NewStyle().Foreground(colorText)
	s.DisabledFile = lipgloss.NewStyle().Foreground(colorMuted)
	s.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	s.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	s.FileSize = lipgloss.NewStyle().Foreground(colorMuted)
	return s
}

// previewTableStyles renders the preview without a highlighted row, since
// the table is never focused.
func previewTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Foreground(colorAccent).
		Bold(true)
	s.Selected = s.Selected.Foreground(colorText).Bold(false)
	return s
}
