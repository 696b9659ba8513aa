package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/google/uuid"
)

// Kind tells which pipeline a file goes through.
type Kind int

const (
	KindTable Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// DetectKind picks the pipeline from the file extension.
func DetectKind(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".xlsx":
		return KindTable, nil
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif":
		return KindImage, nil
	}
	return 0, fmt.Errorf("%w: %q", converter.ErrUnsupportedFormat, ext)
}

// TableOptions are the per-file choices for a tabular file.
type TableOptions struct {
	Directives []types.Directive
	// Columns to keep, in order. Empty keeps every column.
	Columns []string
	Target  types.TableFormat
}

// ImageOptions are the per-file choices for an image.
type ImageOptions struct {
	Target types.ImageFormat
}

// Request is one uploaded file and the choices made for it. Each request
// carries its own ID and options; nothing is shared between requests.
type Request struct {
	ID    uuid.UUID
	Name  string
	Data  []byte
	Table TableOptions
	Image ImageOptions
}

// NewRequest wraps an upload with a fresh ID and default targets.
func NewRequest(name string, data []byte) *Request {
	return &Request{
		ID:    uuid.New(),
		Name:  name,
		Data:  data,
		Table: TableOptions{Target: types.FormatCSV},
		Image: ImageOptions{Target: types.ImagePNG},
	}
}

// Result is the outcome for one request. Err is set when that file failed.
type Result struct {
	ID         uuid.UUID
	SourceName string
	FileName   string
	MIMEType   string
	Data       []byte
	Rows       int
	Columns    int
	Err        error
}

// OK reports whether the file converted.
func (r *Result) OK() bool { return r.Err == nil }
