package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateLoading:
		return m.viewLoading()
	case stateTableOptions:
		return m.viewTableOptions()
	case stateImageOptions:
		return m.viewImageOptions()
	case stateChart:
		return m.viewChart()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("🧹 Data Sweeper")

	authorSpan := SubtitleStyle.Render("by Nick Conklin • ")
	githubSpan := LinkStyle.Render("https://github.com/nconklindev/sweeper")
	byLine := lipgloss.JoinHorizontal(lipgloss.Top, authorSpan, githubSpan)

	s.WriteString(lipgloss.JoinVertical(lipgloss.Left, title, byLine))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV or XLSX file to clean, or an image to convert"))
	s.WriteString("\n\n")
	if m.notice != "" {
		s.WriteString(ErrorStyle.Render(m.notice))
		s.WriteString("\n\n")
	}
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewLoading() string {
	return BoxStyle.Render(fmt.Sprintf("%s Reading %s...", m.spinner.View(), filepath.Base(m.selectedFile)))
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewTableOptions() string {
	var s strings.Builder
	ds := m.preview.Dataset

	s.WriteString(TitleStyle.Render("🧹 " + m.req.Name))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d rows • %d columns • %.1f KB",
		ds.Len(), len(ds.Columns), m.preview.SizeKB)))
	s.WriteString("\n")

	s.WriteString(m.previewTable.View())
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("%s Remove duplicate rows\n", checkbox(m.dedupe)))
	s.WriteString(fmt.Sprintf("%s Fill missing numbers with column mean\n", checkbox(m.fill)))
	s.WriteString("\n")

	for i, col := range ds.Columns {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if m.selectedCols[i] {
			checked = "✓"
		}

		line := fmt.Sprintf("%s [%s] %s (%s)", cursor, checked, col.Name, col.Kind)

		switch {
		case m.cursor == i:
			line = SelectedStyle.Render(line)
		case m.selectedCols[i]:
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Convert to: %s\n", SelectedStyle.Render(string(tableTargets[m.tableTarget]))))

	if m.notice != "" {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle column • a: all • d: dedupe • f: fill • t: format • c: chart • enter: convert • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewImageOptions() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🧹 " + m.req.Name))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • %dx%d • mode %s",
		m.asset.Format, m.asset.Width(), m.asset.Height(), m.asset.Mode)))
	s.WriteString("\n")

	for i, f := range types.ImageFormats {
		line := fmt.Sprintf("  %s", f)
		if i == m.imageTarget {
			line = SelectedStyle.Render("> " + string(f))
		} else {
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	if m.asset.HasAlpha && types.ImageFormats[m.imageTarget] == types.ImageJPEG {
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render("JPEG has no transparency; the alpha channel will be dropped"))
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓ or t: choose format • enter: convert • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewChart() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📊 " + m.req.Name))
	s.WriteString("\n\n")
	s.WriteString(m.chartText)
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("c/esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🧹 Processing..."))
	s.WriteString("\n\n")
	if m.kind == pipeline.KindImage {
		s.WriteString(fmt.Sprintf("Converting image to %s...", types.ImageFormats[m.imageTarget]))
	} else {
		s.WriteString(fmt.Sprintf("Cleaning and converting to %s...", tableTargets[m.tableTarget]))
	}
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

// truncatePath shortens p from the left to fit the terminal width.
func (m Model) truncatePath(p string) string {
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	if len(p) > maxPathLen {
		return "..." + p[len(p)-maxPathLen+3:]
	}
	return p
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("Input:  %s\n", m.truncatePath(m.selectedFile)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", m.truncatePath(m.outputPath))))
	s.WriteString("\n")
	if m.kind == pipeline.KindTable {
		s.WriteString(fmt.Sprintf("Rows: %d • Columns: %d\n", m.result.Rows, m.result.Columns))
	}
	s.WriteString(fmt.Sprintf("Size: %.1f KB (%s)\n", float64(len(m.result.Data))/1024, m.result.MIMEType))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("n: next file • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	if m.selectedFile != "" {
		s.WriteString(SubtitleStyle.Render(filepath.Base(m.selectedFile)))
		s.WriteString("\n")
	}
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("n: choose another file • q: quit"))

	return BoxStyle.Render(s.String())
}
