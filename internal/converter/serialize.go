package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	MIMECSV   = "text/csv"
	MIMEExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// SheetName is the single sheet written to Excel output.
	SheetName = "Sheet1"
)

// ParseTableFormat maps a user choice such as "csv" or "excel" to a format.
func ParseTableFormat(s string) (types.TableFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return types.FormatCSV, nil
	case "excel", "xlsx":
		return types.FormatExcel, nil
	}
	return "", fmt.Errorf("%w: target %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension written for a format.
func Extension(format types.TableFormat) string {
	if format == types.FormatExcel {
		return ".xlsx"
	}
	return ".csv"
}

// MIMEType returns the content type for a format.
func MIMEType(format types.TableFormat) string {
	if format == types.FormatExcel {
		return MIMEExcel
	}
	return MIMECSV
}

// OutputName replaces the extension of name with the one for format.
func OutputName(name string, format types.TableFormat) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + Extension(format)
}

// Serialize encodes ds with a header row and no index column.
func Serialize(ds *types.Dataset, format types.TableFormat) ([]byte, string, error) {
	switch format {
	case types.FormatCSV:
		data, err := writeCSV(ds)
		return data, MIMECSV, err
	case types.FormatExcel:
		data, err := writeXLSX(ds)
		return data, MIMEExcel, err
	}
	return nil, "", fmt.Errorf("%w: target %q", ErrUnsupportedFormat, format)
}

// Convert serializes ds and names the result after the input file.
func Convert(inputFile string, ds *types.Dataset, format types.TableFormat) (*types.ConversionResult, error) {
	data, mime, err := Serialize(ds, format)
	if err != nil {
		return nil, err
	}

	return &types.ConversionResult{
		InputFile:  inputFile,
		OutputFile: OutputName(inputFile, format),
		MIMEType:   mime,
		Data:       data,
		Columns:    ds.Names(),
		Rows:       ds.Len(),
	}, nil
}

// FormatCell renders a cell the way it is written to CSV.
func FormatCell(v types.Value, kind types.ColumnKind) string {
	if v.Missing {
		return ""
	}
	if kind == types.KindNumeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

func writeCSV(ds *types.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ds.Names()); err != nil {
		return nil, err
	}

	record := make([]string, len(ds.Columns))
	for i := 0; i < ds.Len(); i++ {
		for c, col := range ds.Columns {
			record[c] = FormatCell(col.Values[i], col.Kind)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(ds *types.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(ds.Columns))
	for i, name := range ds.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i := 0; i < ds.Len(); i++ {
		row := make([]interface{}, len(ds.Columns))
		for c, col := range ds.Columns {
			v := col.Values[i]
			switch {
			case v.Missing:
				row[c] = nil
			case col.Kind == types.KindNumeric:
				row[c] = v.Num
			default:
				row[c] = v.Text
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
