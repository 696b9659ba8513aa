package converter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

func mustParseCSV(t *testing.T, input string) *types.Dataset {
	t.Helper()
	ds, err := Parse([]byte(input), ".csv")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return ds
}

func assertDatasetsEqual(t *testing.T, got, want *types.Dataset) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("rows = %d; want %d", got.Len(), want.Len())
	}
	if len(got.Columns) != len(want.Columns) {
		t.Fatalf("columns = %v; want %v", got.Names(), want.Names())
	}
	for c := range want.Columns {
		gc, wc := got.Columns[c], want.Columns[c]
		if gc.Name != wc.Name || gc.Kind != wc.Kind {
			t.Fatalf("column %d = %s (%s); want %s (%s)", c, gc.Name, gc.Kind, wc.Name, wc.Kind)
		}
		for i := range wc.Values {
			g, w := gc.Values[i], wc.Values[i]
			if g.Missing != w.Missing {
				t.Errorf("%s[%d] missing = %v; want %v", wc.Name, i, g.Missing, w.Missing)
				continue
			}
			if w.Missing {
				continue
			}
			if wc.Kind == types.KindNumeric && g.Num != w.Num {
				t.Errorf("%s[%d] = %v; want %v", wc.Name, i, g.Num, w.Num)
			}
			if wc.Kind == types.KindText && g.Text != w.Text {
				t.Errorf("%s[%d] = %q; want %q", wc.Name, i, g.Text, w.Text)
			}
		}
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Valid integer", "1", true},
		{"Valid decimal", "1.5", true},
		{"Negative", "-1", true},
		{"Exponent", "1e3", true},
		{"Padded", " 2 ", true},
		{"Empty string", "", false},
		{"Whitespace", "   ", false},
		{"Non-numeric", "abc", false},
		{"Mixed", "1.5h", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNumeric(tt.input)
			if got != tt.expected {
				t.Errorf("IsNumeric(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"  ", true},
		{"NA", true},
		{"NaN", true},
		{"nAn", true},
		{"-NAN", true},
		{"+nan", true},
		{" null ", true},
		{"0", false},
		{"inf", false},
		{"nanny", false},
	}

	for _, tt := range tests {
		if got := IsMissing(tt.input); got != tt.expected {
			t.Errorf("IsMissing(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		expected types.ColumnKind
	}{
		{"All numbers", []string{"1", "2.5"}, types.KindNumeric},
		{"Numbers with gaps", []string{"1", "", "NaN", "3"}, types.KindNumeric},
		{"Any text", []string{"1", "two"}, types.KindText},
		{"All missing", []string{"", "NA"}, types.KindNumeric},
		{"No rows", nil, types.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferKind(tt.cells)
			if got != tt.expected {
				t.Errorf("InferKind(%q) = %s; want %s", tt.cells, got, tt.expected)
			}
		})
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n"), ".txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Parse(.txt) error = %v; want ErrUnsupportedFormat", err)
	}
}

func TestParse_CSV(t *testing.T) {
	ds, err := Parse([]byte("\xef\xbb\xbfName,Hours,Note\nAlice,1.5,ok\nBob,,\n"), ".CSV")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if got := ds.Names(); len(got) != 3 || got[0] != "Name" || got[2] != "Note" {
		t.Fatalf("Names() = %v", got)
	}
	if ds.Columns[0].Kind != types.KindText {
		t.Errorf("Name kind = %s; want text", ds.Columns[0].Kind)
	}
	if ds.Columns[1].Kind != types.KindNumeric {
		t.Errorf("Hours kind = %s; want numeric", ds.Columns[1].Kind)
	}
	if ds.Columns[1].Values[0].Num != 1.5 {
		t.Errorf("Hours[0] = %v; want 1.5", ds.Columns[1].Values[0].Num)
	}
	if !ds.Columns[1].Values[1].Missing || !ds.Columns[2].Values[1].Missing {
		t.Errorf("expected blank cells to be missing")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Empty", "", ErrEmptyFile},
		{"Long row", "a,b\n1,2,3\n", ErrMalformed},
		{"Bad quote", "a,b\n\"1,2\n", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), ".csv")
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestParse_ShortRowsArePadded(t *testing.T) {
	ds := mustParseCSV(t, "a,b,c\n1\n2,x,3\n")
	if ds.Len() != 2 {
		t.Fatalf("rows = %d; want 2", ds.Len())
	}
	if !ds.Columns[1].Values[0].Missing || !ds.Columns[2].Values[0].Missing {
		t.Errorf("expected padded cells to be missing")
	}
}

func TestParse_NormalizesHeaders(t *testing.T) {
	ds := mustParseCSV(t, "a,,a,a\n1,2,3,4\n")
	want := []string{"a", "Unnamed: 1", "a.1", "a.2"}
	got := ds.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names() = %v; want %v", got, want)
			break
		}
	}
}

func TestParse_XLSXSkipsLeadingBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Name", "Hours"})
	f.SetSheetRow("Sheet1", "A4", &[]interface{}{"Alice", 8})
	f.SetSheetRow("Sheet1", "A5", &[]interface{}{"Bob", 7.5})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	ds, err := Parse(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if ds.Len() != 2 || ds.Columns[1].Kind != types.KindNumeric {
		t.Fatalf("got %d rows, Hours kind %s", ds.Len(), ds.Columns[1].Kind)
	}
	if ds.Columns[1].Values[1].Num != 7.5 {
		t.Errorf("Hours[1] = %v; want 7.5", ds.Columns[1].Values[1].Num)
	}
}

func TestParse_XLSXMalformed(t *testing.T) {
	_, err := Parse([]byte("definitely not a zip"), ".xlsx")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Parse() error = %v; want ErrMalformed", err)
	}
}

func TestParse_XLSXDateCellsKeepTheirText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	isoDate := "yyyy-mm-dd"
	isoStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &isoDate})
	if err != nil {
		t.Fatal(err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		t.Fatal(err)
	}

	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"when", "day", "amount"})
	f.SetCellValue("Sheet1", "A2", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC))
	f.SetCellValue("Sheet1", "B2", 45000)
	f.SetCellStyle("Sheet1", "B2", "B2", isoStyle)
	f.SetCellValue("Sheet1", "C2", 12.5)
	f.SetCellStyle("Sheet1", "C2", "C2", money)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	ds, err := Parse(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	when := ds.Columns[0]
	if when.Kind != types.KindText {
		t.Errorf("when kind = %s; want text", when.Kind)
	}
	if got := when.Values[0].Text; got == "45000" || !strings.Contains(got, "15") {
		t.Errorf("when[0] = %q; want the displayed date", got)
	}
	if got := ds.Columns[1].Values[0].Text; got != "2023-03-15" {
		t.Errorf("day[0] = %q; want 2023-03-15", got)
	}
	if ds.Columns[2].Kind != types.KindNumeric || ds.Columns[2].Values[0].Num != 12.5 {
		t.Errorf("amount = %+v; want numeric 12.5", ds.Columns[2])
	}

	data, _, err := Serialize(ds, types.FormatCSV)
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}
	if strings.Contains(string(data), "45000") {
		t.Errorf("CSV output kept a date serial:\n%s", data)
	}
}

func TestParse_XLSXWideRowsGetUnnamedColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a", "b"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 2, "note"})
	f.SetSheetRow("Sheet1", "A3", &[]interface{}{3, 4})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	ds, err := Parse(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	want := []string{"a", "b", "Unnamed: 2"}
	got := ds.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v; want %v", got, want)
		}
	}

	extra := ds.Columns[2]
	if extra.Kind != types.KindText || extra.Values[0].Text != "note" || !extra.Values[1].Missing {
		t.Errorf("Unnamed: 2 = %+v", extra)
	}
}

func TestIsDateStyle(t *testing.T) {
	custom := func(s string) *string { return &s }

	tests := []struct {
		name  string
		style *excelize.Style
		want  bool
	}{
		{"General", &excelize.Style{}, false},
		{"Two decimals", &excelize.Style{NumFmt: 2}, false},
		{"Built-in date", &excelize.Style{NumFmt: 14}, true},
		{"Built-in time", &excelize.Style{NumFmt: 21}, true},
		{"Custom date", &excelize.Style{CustomNumFmt: custom("dd/mm/yyyy")}, true},
		{"Locale prefix", &excelize.Style{CustomNumFmt: custom("[$-409]mmm d")}, true},
		{"Quoted literal", &excelize.Style{CustomNumFmt: custom(`0 "days"`)}, false},
		{"Colored number", &excelize.Style{CustomNumFmt: custom("[Red]#,##0.00")}, false},
		{"Nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDateStyle(tt.style); got != tt.want {
				t.Errorf("isDateStyle() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestHead(t *testing.T) {
	ds := mustParseCSV(t, "a\n1\n2\n3\n4\n5\n6\n7\n")
	if got := Head(ds, 5).Len(); got != 5 {
		t.Errorf("Head(5).Len() = %d; want 5", got)
	}
	if got := Head(ds, 50).Len(); got != 7 {
		t.Errorf("Head(50).Len() = %d; want 7", got)
	}
}
