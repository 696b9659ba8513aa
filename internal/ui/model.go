package ui

import (
	"os"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/imaging"
	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateFilePicker state = iota
	stateLoading
	stateTableOptions
	stateImageOptions
	stateChart
	stateProcessing
	stateComplete
	stateError
)

// AllowedTypes are the extensions offered by the file picker.
var AllowedTypes = []string{".csv", ".xlsx", ".png", ".jpg", ".jpeg", ".bmp", ".gif"}

var tableTargets = []types.TableFormat{types.FormatCSV, types.FormatExcel}

type Model struct {
	state      state
	proc       *pipeline.Processor
	outputDir  string
	filepicker filepicker.Model
	spinner    spinner.Model
	progress   progress.Model

	selectedFile string
	req          *pipeline.Request
	kind         pipeline.Kind

	// tabular
	preview      *pipeline.Preview
	previewTable table.Model
	dedupe       bool
	fill         bool
	selectedCols map[int]bool
	cursor       int
	tableTarget  int
	chartText    string

	// image
	asset       *imaging.Asset
	imageTarget int

	notice       string
	result       *pipeline.Result
	outputPath   string
	err          error
	width        int
	height       int
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type fileLoadedMsg struct {
	req     *pipeline.Request
	kind    pipeline.Kind
	preview *pipeline.Preview
	asset   *imaging.Asset
	err     error
}

type previewMsg struct {
	preview *pipeline.Preview
	err     error
}

type chartMsg struct {
	text string
	err  error
}

type conversionResultMsg struct {
	result *pipeline.Result
	path   string
	err    error
}

type conversionCompleteMsg conversionResultMsg

type progressMsg float64

type waitForProgressMsg struct{}

// InitialModel returns the model in the file picker state. Converted files
// are written to outputDir, or next to the input when it is empty.
func InitialModel(proc *pipeline.Processor, outputDir string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = AllowedTypes
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles = pickerStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		state:        stateFilePicker,
		proc:         proc,
		outputDir:    outputDir,
		filepicker:   fp,
		spinner:      sp,
		progress:     progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
		selectedCols: make(map[int]bool),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.filepicker.Init(), m.spinner.Tick)
}

// reset returns to the file picker, keeping the picker's directory.
func (m Model) reset() (Model, tea.Cmd) {
	m.state = stateFilePicker
	m.selectedFile = ""
	m.req = nil
	m.preview = nil
	m.asset = nil
	m.dedupe = false
	m.fill = false
	m.selectedCols = make(map[int]bool)
	m.cursor = 0
	m.chartText = ""
	m.notice = ""
	m.result = nil
	m.outputPath = ""
	return m, m.filepicker.Init()
}

// fail records err and shows the error screen. The next key returns to the
// picker.
func (m Model) fail(err error) (Model, tea.Cmd) {
	m.err = err
	m.state = stateError
	return m, nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle and help text.
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		m.progress.Width = min(msg.Width-10, 60)

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.state {
		case stateFilePicker:
			if msg.String() == "q" {
				return m, tea.Quit
			}

		case stateTableOptions:
			return m.updateTableOptions(msg)

		case stateImageOptions:
			return m.updateImageOptions(msg)

		case stateChart:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "c", "esc", "enter":
				m.state = stateTableOptions
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "n", "enter", "esc":
				return m.reset()
			}
			return m, nil
		}

	case fileLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.req = msg.req
		m.kind = msg.kind
		m.err = nil

		if msg.kind == pipeline.KindImage {
			m.asset = msg.asset
			m.state = stateImageOptions
			return m, nil
		}

		m.setPreview(msg.preview)
		for i := range msg.preview.Dataset.Columns {
			m.selectedCols[i] = true
		}
		m.state = stateTableOptions
		return m, nil

	case previewMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.setPreview(msg.preview)
		return m, nil

	case chartMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			m.state = stateTableOptions
			return m, nil
		}
		m.chartText = msg.text
		m.state = stateChart
		return m, nil

	case conversionCompleteMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.result = msg.result
		m.outputPath = msg.path
		m.state = stateComplete
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = stateLoading
			return m, m.loadFile(path)
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = "Unsupported file: " + path
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) updateTableOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.preview.Dataset.Columns
	m.notice = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m.reset()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(columns)-1 {
			m.cursor++
		}
	case " ":
		m.selectedCols[m.cursor] = !m.selectedCols[m.cursor]
	case "a":
		for i := range columns {
			m.selectedCols[i] = true
		}
	case "d":
		m.dedupe = !m.dedupe
		return m, m.refreshPreview()
	case "f":
		m.fill = !m.fill
		return m, m.refreshPreview()
	case "t":
		m.tableTarget = (m.tableTarget + 1) % len(tableTargets)
	case "c":
		m.state = stateLoading
		return m, m.renderChart()
	case "enter":
		if len(m.chosenColumns()) == 0 {
			m.notice = "Select at least one column"
			return m, nil
		}
		m.req.Table = m.tableOptions()
		m.state = stateProcessing
		return m.convertFile()
	}
	return m, nil
}

func (m Model) updateImageOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(types.ImageFormats)

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m.reset()
	case "t", "right", "l", "down", "j":
		m.imageTarget = (m.imageTarget + 1) % n
	case "left", "h", "up", "k":
		m.imageTarget = (m.imageTarget + n - 1) % n
	case "enter":
		m.req.Image = pipeline.ImageOptions{Target: types.ImageFormats[m.imageTarget]}
		m.state = stateProcessing
		return m.convertFile()
	}
	return m, nil
}

// chosenColumns returns the selected column names in file order.
func (m Model) chosenColumns() []string {
	var names []string
	for i, col := range m.preview.Dataset.Columns {
		if m.selectedCols[i] {
			names = append(names, col.Name)
		}
	}
	return names
}

// directives returns the cleaning steps currently toggled on.
func (m Model) directives() []types.Directive {
	var d []types.Directive
	if m.dedupe {
		d = append(d, types.RemoveDuplicateRows)
	}
	if m.fill {
		d = append(d, types.FillMissingNumeric)
	}
	return d
}

func (m Model) tableOptions() pipeline.TableOptions {
	return pipeline.TableOptions{
		Directives: m.directives(),
		Columns:    m.chosenColumns(),
		Target:     tableTargets[m.tableTarget],
	}
}

// setPreview stores the preview and rebuilds the preview table.
func (m *Model) setPreview(p *pipeline.Preview) {
	m.preview = p
	m.previewTable = buildPreviewTable(p.Head)
}

const maxCellWidth = 16

func buildPreviewTable(head *types.Dataset) table.Model {
	cols := make([]table.Column, len(head.Columns))
	rows := make([]table.Row, head.Len())
	for i := range rows {
		rows[i] = make(table.Row, len(head.Columns))
	}

	for j, col := range head.Columns {
		width := len(col.Name)
		for i, v := range col.Values {
			cell := "·"
			if !v.Missing {
				cell = converter.FormatCell(v, col.Kind)
			}
			rows[i][j] = cell
			width = max(width, len(cell))
		}
		cols[j] = table.Column{Title: col.Name, Width: min(width, maxCellWidth)}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
	)

	t.SetStyles(previewTableStyles())
	return t
}
