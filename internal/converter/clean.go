package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// Apply runs the directives in order. The input is not modified.
func Apply(ds *types.Dataset, directives ...types.Directive) (*types.Dataset, error) {
	out := ds
	for _, d := range directives {
		switch d {
		case types.RemoveDuplicateRows:
			out = RemoveDuplicates(out)
		case types.FillMissingNumeric:
			out = FillMissingNumeric(out)
		default:
			return nil, fmt.Errorf("unknown cleaning directive %d", d)
		}
	}
	if out == ds {
		out = ds.Clone()
	}
	return out, nil
}

// RemoveDuplicates drops rows identical to an earlier row, keeping the first
// occurrence and the order of the rest. Missing cells compare equal.
func RemoveDuplicates(ds *types.Dataset) *types.Dataset {
	seen := make(map[string]bool, ds.Len())
	var keep []int

	for i := 0; i < ds.Len(); i++ {
		key := rowKey(ds, i)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}

	out := &types.Dataset{Columns: make([]types.Column, len(ds.Columns))}
	for c, col := range ds.Columns {
		vals := make([]types.Value, len(keep))
		for j, i := range keep {
			vals[j] = col.Values[i]
		}
		out.Columns[c] = types.Column{Name: col.Name, Kind: col.Kind, Values: vals}
	}
	return out
}

func rowKey(ds *types.Dataset, i int) string {
	var b strings.Builder
	for _, col := range ds.Columns {
		v := col.Values[i]
		switch {
		case v.Missing:
			b.WriteString("\x00")
		case col.Kind == types.KindNumeric:
			n := v.Num
			if n == 0 {
				n = 0 // -0 and 0 share a key
			}
			b.WriteString(strconv.FormatUint(math.Float64bits(n), 16))
		default:
			b.WriteString(strconv.Quote(v.Text))
		}
		b.WriteByte('|')
	}
	return b.String()
}

// FillMissingNumeric replaces missing cells of every numeric column with the
// mean of that column's present cells. Text columns are untouched, and a
// numeric column with no present cells stays missing.
func FillMissingNumeric(ds *types.Dataset) *types.Dataset {
	out := ds.Clone()

	for c := range out.Columns {
		col := &out.Columns[c]
		if col.Kind != types.KindNumeric {
			continue
		}

		mean, ok := columnMean(col.Values)
		if !ok {
			continue
		}

		for i, v := range col.Values {
			if v.Missing {
				col.Values[i] = types.NumberValue(mean)
			}
		}
	}

	return out
}

func columnMean(values []types.Value) (float64, bool) {
	var sum float64
	n := 0
	for _, v := range values {
		if v.Missing {
			continue
		}
		sum += v.Num
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Project keeps the named columns in the given order. An empty selection
// yields a dataset with no columns.
func Project(ds *types.Dataset, names []string) (*types.Dataset, error) {
	out := &types.Dataset{Columns: make([]types.Column, 0, len(names))}
	picked := make(map[string]bool, len(names))

	for _, name := range names {
		idx := ds.Index(name)
		if idx == -1 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if picked[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		picked[name] = true

		col := ds.Columns[idx]
		vals := make([]types.Value, len(col.Values))
		copy(vals, col.Values)
		out.Columns = append(out.Columns, types.Column{Name: col.Name, Kind: col.Kind, Values: vals})
	}

	return out, nil
}
