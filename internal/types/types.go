package types

import "strconv"

// ConversionResult is the downloadable output of one converted file.
type ConversionResult struct {
	InputFile  string
	OutputFile string
	MIMEType   string
	Data       []byte
	Columns    []string
	Rows       int
}

// FileData is the raw header and record grid read from a tabular file,
// before any type classification.
type FileData struct {
	Headers   []string
	Rows      [][]string
	HeaderRow int
}

// ColumnKind is the inferred type of a column, fixed at parse time.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
)

func (k ColumnKind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// Value is a single cell. Numeric cells carry Num, text cells carry Text.
type Value struct {
	Text    string
	Num     float64
	Missing bool
}

// MissingValue returns an empty cell.
func MissingValue() Value {
	return Value{Missing: true}
}

// NumberValue returns a present numeric cell.
func NumberValue(f float64) Value {
	return Value{Num: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// TextValue returns a present text cell.
func TextValue(s string) Value {
	return Value{Text: s}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []Value
}

// Dataset is an ordered set of columns sharing one row count.
type Dataset struct {
	Columns []Column
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns the cells of row i across all columns.
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for i, c := range d.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// Directive is a cleaning operation applied to a Dataset.
type Directive int

const (
	RemoveDuplicateRows Directive = iota + 1
	FillMissingNumeric
)

func (d Directive) String() string {
	switch d {
	case RemoveDuplicateRows:
		return "remove_duplicates"
	case FillMissingNumeric:
		return "fill_missing_numeric"
	}
	return "unknown"
}

// TableFormat is a tabular output format.
type TableFormat string

const (
	FormatCSV   TableFormat = "CSV"
	FormatExcel TableFormat = "Excel"
)

// ImageFormat is an image output format.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "PNG"
	ImageJPEG ImageFormat = "JPEG"
	ImageBMP  ImageFormat = "BMP"
	ImageGIF  ImageFormat = "GIF"
)

// ImageFormats lists the selectable image targets in display order.
var ImageFormats = []ImageFormat{ImagePNG, ImageJPEG, ImageBMP, ImageGIF}
