package converter

import (
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// missingMarkers are the cell texts read as missing values.
var missingMarkers = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"null":     true,
	"NULL":     true,
	"None":     true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"<NA>":     true,
	"-1.#IND":  true,
	"1.#IND":   true,
	"-1.#QNAN": true,
	"1.#QNAN":  true,
}

// IsMissing reports whether a cell should be read as missing. NaN is
// matched in any letter case, so no present numeric cell holds a NaN.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	return missingMarkers[s] || strings.EqualFold(strings.TrimLeft(s, "+-"), "nan")
}

// IsNumeric checks if a string parses as a number
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// InferKind classifies a column from its raw cells. A column is numeric when
// every present cell is a number. A column that has rows but no present
// cells is numeric; a column with no rows is text.
func InferKind(cells []string) types.ColumnKind {
	if len(cells) == 0 {
		return types.KindText
	}
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		if !IsNumeric(c) {
			return types.KindText
		}
	}
	return types.KindNumeric
}

func parseCell(cell string, kind types.ColumnKind) types.Value {
	if IsMissing(cell) {
		return types.MissingValue()
	}
	if kind == types.KindNumeric {
		f, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		return types.Value{Text: cell, Num: f}
	}
	return types.TextValue(cell)
}

// NumericColumns returns the indices of numeric columns in order.
func NumericColumns(ds *types.Dataset) []int {
	var idx []int
	for i, c := range ds.Columns {
		if c.Kind == types.KindNumeric {
			idx = append(idx, i)
		}
	}
	return idx
}
