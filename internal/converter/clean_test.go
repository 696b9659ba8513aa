package converter

import (
	"errors"
	"testing"

	"github.com/nconklindev/sweeper/internal/types"
)

func TestRemoveDuplicates(t *testing.T) {
	ds := mustParseCSV(t, "name,n\nx,1\ny,2\nx,1\n,\nx,1.0\n,\ny,3\n")
	got := RemoveDuplicates(ds)

	want := mustParseCSV(t, "name,n\nx,1\ny,2\n,\ny,3\n")
	assertDatasetsEqual(t, got, want)

	if ds.Len() != 7 {
		t.Errorf("input modified: rows = %d; want 7", ds.Len())
	}
}

func TestRemoveDuplicates_Idempotent(t *testing.T) {
	ds := mustParseCSV(t, "a,b\n1,x\n1,x\n2,y\n2,z\n2,y\n")
	once := RemoveDuplicates(ds)
	twice := RemoveDuplicates(once)
	assertDatasetsEqual(t, twice, once)
}

func TestFillMissingNumeric(t *testing.T) {
	ds := mustParseCSV(t, "n,label\n1,a\n,\n3,c\n")
	got := FillMissingNumeric(ds)

	n := got.Columns[0].Values
	for i, want := range []float64{1, 2, 3} {
		if n[i].Missing || n[i].Num != want {
			t.Errorf("n[%d] = %+v; want %v", i, n[i], want)
		}
	}
	if !got.Columns[1].Values[1].Missing {
		t.Errorf("text column was filled")
	}
	if !ds.Columns[0].Values[1].Missing {
		t.Errorf("input modified")
	}
}

func TestFillMissingNumeric_AllMissingStaysMissing(t *testing.T) {
	ds := mustParseCSV(t, "empty,n\n,1\n,2\n")
	got := FillMissingNumeric(ds)
	for i, v := range got.Columns[0].Values {
		if !v.Missing {
			t.Errorf("empty[%d] = %+v; want missing", i, v)
		}
	}
}

func TestFillMissingNumeric_NaNSpellings(t *testing.T) {
	ds := mustParseCSV(t, "a\n1\nnAn\n3\n-NAN\n")
	if ds.Columns[0].Kind != types.KindNumeric {
		t.Fatalf("kind = %s; want numeric", ds.Columns[0].Kind)
	}
	if v := ds.Columns[0].Values[1]; !v.Missing {
		t.Fatalf("a[1] = %+v; want missing", v)
	}

	got := FillMissingNumeric(ds)
	for _, i := range []int{1, 3} {
		if v := got.Columns[0].Values[i]; v.Missing || v.Num != 2 {
			t.Errorf("a[%d] = %+v; want 2", i, v)
		}
	}
}

func TestApply_DedupeBeforeFill(t *testing.T) {
	ds := mustParseCSV(t, "n\n1\n1\n\"\"\n4\n")

	got, err := Apply(ds, types.RemoveDuplicateRows, types.FillMissingNumeric)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("rows = %d; want 3", got.Len())
	}
	if v := got.Columns[0].Values[1]; v.Num != 2.5 {
		t.Errorf("filled = %v; want 2.5 (mean after dedupe)", v.Num)
	}

	if _, err := Apply(ds, types.Directive(99)); err == nil {
		t.Errorf("Apply(unknown) expected error")
	}
}

func TestProject(t *testing.T) {
	ds := mustParseCSV(t, "a,b,c\n1,x,3\n4,y,6\n")

	t.Run("Identity", func(t *testing.T) {
		got, err := Project(ds, ds.Names())
		if err != nil {
			t.Fatal(err)
		}
		assertDatasetsEqual(t, got, ds)
	})

	t.Run("Empty selection", func(t *testing.T) {
		got, err := Project(ds, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Columns) != 0 {
			t.Errorf("columns = %v; want none", got.Names())
		}
	})

	t.Run("Reorders", func(t *testing.T) {
		got, err := Project(ds, []string{"c", "a"})
		if err != nil {
			t.Fatal(err)
		}
		assertDatasetsEqual(t, got, mustParseCSV(t, "c,a\n3,1\n6,4\n"))
	})

	t.Run("Unknown column", func(t *testing.T) {
		_, err := Project(ds, []string{"a", "zzz"})
		if !errors.Is(err, ErrUnknownColumn) {
			t.Errorf("Project() error = %v; want ErrUnknownColumn", err)
		}
	})

	t.Run("Duplicate column", func(t *testing.T) {
		_, err := Project(ds, []string{"a", "a"})
		if !errors.Is(err, ErrDuplicateColumn) {
			t.Errorf("Project() error = %v; want ErrDuplicateColumn", err)
		}
	})
}
