package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

const salesCSV = "region,units\nnorth,10\nsouth,\nnorth,10\n"

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

// loadedTable returns a model showing the options screen for a CSV written
// to dir.
func loadedTable(t *testing.T, dir string) Model {
	t.Helper()

	path := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(path, []byte(salesCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	m := InitialModel(pipeline.NewProcessor(pipeline.DefaultOptions()), "")
	m.selectedFile = path
	msg := m.loadFile(path)()

	next, _ := m.Update(msg)
	m = next.(Model)
	if m.state != stateTableOptions {
		t.Fatalf("state = %d; want table options (err %v)", m.state, m.err)
	}
	return m
}

func TestLoadFile_Table(t *testing.T) {
	m := loadedTable(t, t.TempDir())

	if m.preview.Dataset.Len() != 3 || len(m.preview.Dataset.Columns) != 2 {
		t.Errorf("preview shape = %d x %d", m.preview.Dataset.Len(), len(m.preview.Dataset.Columns))
	}
	if !m.selectedCols[0] || !m.selectedCols[1] {
		t.Errorf("columns not preselected: %v", m.selectedCols)
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}

func TestLoadFile_Unsupported(t *testing.T) {
	m := InitialModel(pipeline.NewProcessor(pipeline.DefaultOptions()), "")
	msg := m.loadFile("notes.txt")()

	next, _ := m.Update(msg)
	m = next.(Model)
	if m.state != stateError || !errors.Is(m.err, converter.ErrUnsupportedFormat) {
		t.Fatalf("state = %d, err = %v", m.state, m.err)
	}

	m, _ = press(t, m, "n")
	if m.state != stateFilePicker {
		t.Errorf("state after n = %d; want picker", m.state)
	}
}

func TestTableOptionsKeys(t *testing.T) {
	m := loadedTable(t, t.TempDir())

	m, cmd := press(t, m, "d")
	if !m.dedupe || cmd == nil {
		t.Fatal("d should toggle dedupe and refresh the preview")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.preview.Dataset.Len() != 2 {
		t.Errorf("deduped preview rows = %d; want 2", m.preview.Dataset.Len())
	}

	m, _ = press(t, m, "t")
	if tableTargets[m.tableTarget] != types.FormatExcel {
		t.Errorf("target = %s; want Excel", tableTargets[m.tableTarget])
	}

	m, _ = press(t, m, " ", "down", " ")
	if len(m.chosenColumns()) != 0 {
		t.Fatalf("chosen = %v; want none", m.chosenColumns())
	}
	m, _ = press(t, m, "enter")
	if m.state != stateTableOptions || m.notice == "" {
		t.Errorf("enter with no columns: state = %d, notice = %q", m.state, m.notice)
	}

	m, _ = press(t, m, "a")
	opts := m.tableOptions()
	if len(opts.Columns) != 2 || len(opts.Directives) != 1 || opts.Target != types.FormatExcel {
		t.Errorf("options = %+v", opts)
	}
}

func TestChart(t *testing.T) {
	m := loadedTable(t, t.TempDir())

	m, cmd := press(t, m, "c")
	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.state != stateChart || m.chartText == "" {
		t.Fatalf("state = %d, chart = %q", m.state, m.chartText)
	}

	m, _ = press(t, m, "esc")
	if m.state != stateTableOptions {
		t.Errorf("state = %d; want table options", m.state)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	m := loadedTable(t, dir)

	m, _ = press(t, m, "d", "f", "enter")
	if m.state != stateProcessing {
		t.Fatalf("state = %d; want processing", m.state)
	}

	var done conversionCompleteMsg
	for {
		msg := waitForProgress(m.progressChan, m.resultChan)()
		if c, ok := msg.(conversionCompleteMsg); ok {
			done = c
			break
		}
	}
	if done.err != nil {
		t.Fatalf("conversion failed: %v", done.err)
	}

	// sales.csv exists, so the output takes the suffixed name.
	want := filepath.Join(dir, "sales_converted.csv")
	if done.path != want {
		t.Errorf("path = %s; want %s", done.path, want)
	}
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "region,units\nnorth,10\nsouth,10\n" {
		t.Errorf("output =\n%s", got)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if m.state != stateComplete {
		t.Fatalf("state = %d; want complete", m.state)
	}
	m, _ = press(t, m, "n")
	if m.state != stateFilePicker || m.req != nil {
		t.Errorf("n should reset to the picker")
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	if got := outputPath(dir, "a.csv"); got != filepath.Join(dir, "a.csv") {
		t.Errorf("fresh name = %s", got)
	}

	os.WriteFile(filepath.Join(dir, "a.csv"), nil, 0o644)
	if got := outputPath(dir, "a.csv"); got != filepath.Join(dir, "a_converted.csv") {
		t.Errorf("taken name = %s", got)
	}

	os.WriteFile(filepath.Join(dir, "a_converted.csv"), nil, 0o644)
	if got := outputPath(dir, "a.csv"); got != filepath.Join(dir, "a_converted_2.csv") {
		t.Errorf("twice taken name = %s", got)
	}
}

func TestWriteOutput_Dir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := &pipeline.Result{FileName: "a.csv", Data: []byte("x\n1\n")}

	path, err := writeOutput(dir, res)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "a.csv") {
		t.Errorf("path = %s", path)
	}

	if data, _ := os.ReadFile(path); string(data) != "x\n1\n" {
		t.Errorf("written = %q", data)
	}
}
