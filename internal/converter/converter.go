package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

// HeaderSearchLimit bounds how many leading rows of a sheet are scanned for
// the header row.
const HeaderSearchLimit = 20

// Parse reads a CSV or XLSX file into a typed Dataset. The extension picks
// the reader and is matched case-insensitively.
func Parse(data []byte, ext string) (*types.Dataset, error) {
	fd, err := ReadFileData(data, ext)
	if err != nil {
		return nil, err
	}
	return BuildDataset(fd)
}

// ReadFileData reads the raw header and rows from file bytes.
func ReadFileData(data []byte, ext string) (*types.FileData, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		return readCSVData(data)
	case ".xlsx":
		return readXLSXData(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func readCSVData(data []byte) (*types.FileData, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return &types.FileData{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

func readXLSXData(data []byte) (*types.FileData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := formatDateCells(f, sheetName, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	headerRowIdx := findHeaderRow(rows)
	if headerRowIdx == -1 {
		return nil, ErrEmptyFile
	}

	return &types.FileData{
		Headers:   widenHeaders(rows[headerRowIdx], rows[headerRowIdx+1:]),
		Rows:      rows[headerRowIdx+1:],
		HeaderRow: headerRowIdx,
	}, nil
}

// formatDateCells replaces the serial number of every date-styled cell in
// rows with its displayed text, so date columns read as text.
func formatDateCells(f *excelize.File, sheet string, rows [][]string) error {
	var shown [][]string
	isDate := make(map[int]bool)

	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, axis)
			if err != nil {
				return err
			}
			date, ok := isDate[styleID]
			if !ok {
				style, err := f.GetStyle(styleID)
				if err != nil {
					return err
				}
				date = isDateStyle(style)
				isDate[styleID] = date
			}
			if !date {
				continue
			}

			if shown == nil {
				if shown, err = f.GetRows(sheet); err != nil {
					return err
				}
			}
			if r < len(shown) && c < len(shown[r]) {
				row[c] = shown[r][c]
			}
		}
	}

	return nil
}

// isDateStyle reports whether a cell style displays its number as a date or
// time: one of the built-in date formats, or a custom format with date or
// time tokens outside quoted literals.
func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return hasDateTokens(*style.CustomNumFmt)
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 22, id >= 45 && id <= 47:
		return true
	}
	return false
}

func hasDateTokens(format string) bool {
	quoted := false
	for i := 0; i < len(format); i++ {
		switch ch := format[i]; {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '\\':
			i++
		case ch == '[':
			// Skip color and locale sections such as [Red] or [$-409].
			if end := strings.IndexByte(format[i:], ']'); end > 0 {
				i += end
			}
		default:
			switch ch | 0x20 {
			case 'd', 'm', 'y', 'h', 's':
				return true
			}
		}
	}
	return false
}

// widenHeaders pads headers with blanks up to the widest data row. Sheets
// often carry trailing note columns without a header cell.
func widenHeaders(headers []string, rows [][]string) []string {
	width := len(headers)
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == len(headers) {
		return headers
	}
	out := make([]string, width)
	copy(out, headers)
	return out
}

// findHeaderRow returns the first row with any non-empty cell, looking at
// no more than HeaderSearchLimit rows.
func findHeaderRow(rows [][]string) int {
	searchLimit := len(rows)
	if searchLimit > HeaderSearchLimit {
		searchLimit = HeaderSearchLimit
	}

	for i := 0; i < searchLimit; i++ {
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}

	return -1
}

// BuildDataset classifies each column once and converts the raw grid into
// typed cells. Short rows are padded with missing cells.
func BuildDataset(fd *types.FileData) (*types.Dataset, error) {
	headers := normalizeHeaders(fd.Headers)
	width := len(headers)

	for i, row := range fd.Rows {
		if len(row) > width {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrMalformed, i+1, len(row), width)
		}
	}

	ds := &types.Dataset{Columns: make([]types.Column, width)}
	for col, name := range headers {
		raw := make([]string, len(fd.Rows))
		for i, row := range fd.Rows {
			if col < len(row) {
				raw[i] = row[col]
			}
		}

		kind := InferKind(raw)
		values := make([]types.Value, len(raw))
		for i, cell := range raw {
			values[i] = parseCell(cell, kind)
		}

		ds.Columns[col] = types.Column{Name: name, Kind: kind, Values: values}
	}

	return ds, nil
}

// normalizeHeaders fills blank headers and suffixes repeated ones so column
// names are unique.
func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))

	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			base := name
			for n := 1; seen[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		seen[name] = true
		out[i] = name
	}

	return out
}

// Head returns the first n rows of ds.
func Head(ds *types.Dataset, n int) *types.Dataset {
	if n > ds.Len() {
		n = ds.Len()
	}
	out := &types.Dataset{Columns: make([]types.Column, len(ds.Columns))}
	for i, c := range ds.Columns {
		vals := make([]types.Value, n)
		copy(vals, c.Values[:n])
		out.Columns[i] = types.Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}
