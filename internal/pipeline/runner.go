// Package pipeline runs uploaded files through the tabular or image
// pipeline, one file at a time, and reports a result per file.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nconklindev/sweeper/internal/chart"
	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/imaging"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/types"
)

// Options configures a Processor.
type Options struct {
	PreviewRows     int
	ThumbnailWidth  int
	ThumbnailHeight int
	ChartMaxRows    int
	ChartWidth      int
	ChartHeight     int
	Image           imaging.Options
}

// DefaultOptions returns the processor defaults.
func DefaultOptions() Options {
	return Options{
		PreviewRows:     5,
		ThumbnailWidth:  100,
		ThumbnailHeight: 200,
		ChartMaxRows:    50,
		ChartWidth:      800,
		ChartHeight:     400,
		Image:           imaging.DefaultOptions(),
	}
}

// OptionsFromConfig maps application settings onto processor options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PreviewRows:     cfg.Preview.Rows,
		ThumbnailWidth:  cfg.Preview.ThumbnailWidth,
		ThumbnailHeight: cfg.Preview.ThumbnailHeight,
		ChartMaxRows:    cfg.Chart.MaxRows,
		ChartWidth:      cfg.Chart.Width,
		ChartHeight:     cfg.Chart.Height,
		Image:           imaging.Options{JPEGQuality: cfg.Image.JPEGQuality},
	}
}

// Processor converts files. It holds only configuration and is safe for
// concurrent use.
type Processor struct {
	opts Options
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	return &Processor{opts: opts}
}

// Options returns the processor configuration.
func (p *Processor) Options() Options {
	return p.opts
}

// Prepare parses a tabular request and applies its cleaning and column
// selection.
func (p *Processor) Prepare(ctx context.Context, req *Request) (*types.Dataset, error) {
	ds, err := converter.Parse(req.Data, filepath.Ext(req.Name))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.Name, err)
	}

	ds, err = converter.Apply(ds, req.Table.Directives...)
	if err != nil {
		return nil, err
	}

	if len(req.Table.Columns) > 0 {
		ds, err = converter.Project(ds, req.Table.Columns)
		if err != nil {
			return nil, fmt.Errorf("select columns: %w", err)
		}
	}

	logging.ForFile(ctx, req.ID, req.Name).Debug("dataset prepared",
		"rows", ds.Len(), "columns", len(ds.Columns))
	return ds, nil
}

// Preview is what a user sees before converting a tabular file.
type Preview struct {
	Dataset *types.Dataset
	Head    *types.Dataset
	SizeKB  float64
}

// Inspect prepares a tabular request and returns its preview.
func (p *Processor) Inspect(ctx context.Context, req *Request) (*Preview, error) {
	ds, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Dataset: ds,
		Head:    converter.Head(ds, p.opts.PreviewRows),
		SizeKB:  float64(len(req.Data)) / 1024,
	}, nil
}

// ProcessTable converts a tabular request to its target format.
func (p *Processor) ProcessTable(ctx context.Context, req *Request) (*Result, error) {
	ds, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	conv, err := converter.Convert(req.Name, ds, req.Table.Target)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", req.Name, err)
	}

	return &Result{
		ID:         req.ID,
		SourceName: req.Name,
		FileName:   conv.OutputFile,
		MIMEType:   conv.MIMEType,
		Data:       conv.Data,
		Rows:       conv.Rows,
		Columns:    len(conv.Columns),
	}, nil
}

// ProcessImage re-encodes an image request to its target format.
func (p *Processor) ProcessImage(ctx context.Context, req *Request) (*Result, error) {
	asset, err := imaging.Decode(req.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.Name, err)
	}

	data, err := imaging.Convert(asset, req.Image.Target, p.opts.Image)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", req.Name, err)
	}

	logging.ForFile(ctx, req.ID, req.Name).Debug("image converted",
		"mode", asset.Mode, "from", asset.Format, "to", req.Image.Target)

	return &Result{
		ID:         req.ID,
		SourceName: req.Name,
		FileName:   imaging.OutputName(req.Name, req.Image.Target),
		MIMEType:   imaging.MIMEType(req.Image.Target),
		Data:       data,
	}, nil
}

// Thumbnail returns a PNG preview of an image request.
func (p *Processor) Thumbnail(ctx context.Context, req *Request) ([]byte, error) {
	asset, err := imaging.Decode(req.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.Name, err)
	}
	return imaging.PreviewPNG(asset, p.opts.ThumbnailWidth, p.opts.ThumbnailHeight)
}

// Chart renders the bar chart PNG for a tabular request.
func (p *Processor) Chart(ctx context.Context, req *Request) ([]byte, error) {
	ds, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := chart.Extract(ds, p.opts.ChartMaxRows)
	if err != nil {
		return nil, err
	}
	return chart.RenderPNG(data, p.opts.ChartWidth, p.opts.ChartHeight)
}

// Process routes a request by its extension. Failures are returned in the
// Result rather than as an error.
func (p *Processor) Process(ctx context.Context, req *Request) *Result {
	log := logging.ForFile(ctx, req.ID, req.Name)

	kind, err := DetectKind(req.Name)
	if err != nil {
		log.Warn("conversion failed", "error", err)
		return &Result{ID: req.ID, SourceName: req.Name, Err: err}
	}

	var res *Result
	switch kind {
	case KindTable:
		res, err = p.ProcessTable(ctx, req)
	case KindImage:
		res, err = p.ProcessImage(ctx, req)
	}
	if err != nil {
		log.Warn("conversion failed", "kind", kind, "error", err)
		return &Result{ID: req.ID, SourceName: req.Name, Err: err}
	}

	log.Info("conversion finished", "kind", kind, "output", res.FileName, "bytes", len(res.Data))
	return res
}

// Run processes requests sequentially. A failed file is recorded in its own
// Result and the batch continues. When ctx is cancelled the remaining files
// are marked skipped.
func (p *Processor) Run(ctx context.Context, reqs []*Request) ([]*Result, RunStats) {
	stats := RunStats{Total: len(reqs)}
	results := make([]*Result, 0, len(reqs))

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			results = append(results, &Result{ID: req.ID, SourceName: req.Name, Err: err})
			stats.Skipped++
			continue
		}

		res := p.Process(ctx, req)
		results = append(results, res)

		if !res.OK() {
			stats.Failed++
			continue
		}
		stats.Converted++
		stats.TotalInputBytes += int64(len(req.Data))
		stats.TotalOutputBytes += int64(len(res.Data))
	}

	logging.FromContext(ctx).Info("batch finished",
		"total", stats.Total,
		"converted", stats.Converted,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return results, stats
}
