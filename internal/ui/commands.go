package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/chart"
	"github.com/nconklindev/sweeper/internal/imaging"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

// chartWidth bounds the text chart when the terminal size is unknown.
const chartWidth = 60

func (m Model) loadFile(path string) tea.Cmd {
	proc := m.proc
	return func() tea.Msg {
		kind, err := pipeline.DetectKind(path)
		if err != nil {
			return fileLoadedMsg{err: err}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fileLoadedMsg{err: fmt.Errorf("read %s: %w", filepath.Base(path), err)}
		}

		req := pipeline.NewRequest(filepath.Base(path), data)
		msg := fileLoadedMsg{req: req, kind: kind}

		switch kind {
		case pipeline.KindTable:
			msg.preview, msg.err = proc.Inspect(context.Background(), req)
		case pipeline.KindImage:
			msg.asset, msg.err = imaging.Decode(data)
			if msg.err != nil {
				msg.err = fmt.Errorf("decode %s: %w", req.Name, msg.err)
			}
		}

		log := logging.ForFile(context.Background(), req.ID, path)
		if msg.err != nil {
			log.Warn("file load failed", "error", msg.err)
		} else {
			log.Info("file loaded", "kind", kind)
		}
		return msg
	}
}

// refreshPreview re-runs the preview with the current cleaning toggles.
func (m Model) refreshPreview() tea.Cmd {
	proc := m.proc
	req := *m.req
	req.Table = pipeline.TableOptions{Directives: m.directives()}
	return func() tea.Msg {
		p, err := proc.Inspect(context.Background(), &req)
		return previewMsg{preview: p, err: err}
	}
}

func (m Model) renderChart() tea.Cmd {
	proc := m.proc
	req := *m.req
	req.Table = m.tableOptions()
	width := chartWidth
	if m.width > 20 {
		width = min(m.width-20, 100)
	}
	return func() tea.Msg {
		ds, err := proc.Prepare(context.Background(), &req)
		if err != nil {
			return chartMsg{err: err}
		}
		data, err := chart.Extract(ds, proc.Options().ChartMaxRows)
		if err != nil {
			return chartMsg{err: err}
		}
		return chartMsg{text: chart.RenderText(data, width)}
	}
}

// Conversion steps reported on the progress bar.
const (
	stepConverted = 0.7
	stepWritten   = 1.0
)

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 4)
	m.resultChan = make(chan conversionResultMsg, 1)

	// Capture for the goroutine
	progressChan := m.progressChan
	resultChan := m.resultChan
	proc := m.proc
	req := m.req
	dir := m.outputDir
	if dir == "" {
		dir = filepath.Dir(m.selectedFile)
	}

	go func() {
		defer close(resultChan)
		defer close(progressChan)

		res := proc.Process(context.Background(), req)
		if !res.OK() {
			resultChan <- conversionResultMsg{err: res.Err}
			return
		}
		progressChan <- stepConverted

		path, err := writeOutput(dir, res)
		if err == nil {
			progressChan <- stepWritten
		}
		resultChan <- conversionResultMsg{result: res, path: path, err: err}
	}()

	return m, tea.Batch(
		waitForProgress(progressChan, resultChan),
		m.progress.SetPercent(0),
	)
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

// writeOutput saves the result in dir. An existing file is never
// overwritten: the name gets a "_converted" suffix instead.
func writeOutput(dir string, res *pipeline.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := outputPath(dir, res.FileName)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	logging.ForFile(context.Background(), res.ID, res.FileName).Info("output written", "path", path, "bytes", len(res.Data))
	return path, nil
}

// outputPath returns dir/name, or a "_converted" variant when that file
// already exists.
func outputPath(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext) + "_converted"
	path = filepath.Join(dir, base+ext)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); err != nil {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}
