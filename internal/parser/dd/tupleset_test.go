package dd_test

import (
	"reflect"
	"testing"

	"github.com/siddharth-krishna/xl2times/internal/parser/dd"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

func TestTupleSetDedup(t *testing.T) {
	s := dd.NewTupleSet()
	if !s.Add(records.Row{"X", "Y"}) {
		t.Fatal("first add should report true")
	}
	if s.Add(records.Row{"X", "Y"}) {
		t.Fatal("duplicate add should report false")
	}
	if !s.Add(records.Row{"X", "Y", "desc"}) {
		t.Fatal("longer tuple is distinct")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if !s.Contains(records.Row{"X", "Y"}) {
		t.Fatal("missing tuple")
	}
}

func TestTupleSetComponentBoundaries(t *testing.T) {
	s := dd.NewTupleSet()
	s.Add(records.Row{"AB", "C"})
	// Same concatenation, different component split: must not collapse.
	if !s.Add(records.Row{"A", "BC"}) {
		t.Fatal("tuples with different component boundaries collapsed")
	}
}

func TestTupleSetUnionKeepsFirstInsertionOrder(t *testing.T) {
	a := dd.NewTupleSet()
	a.Add(records.Row{"A"})
	a.Add(records.Row{"B"})

	b := dd.NewTupleSet()
	b.Add(records.Row{"B"})
	b.Add(records.Row{"C"})

	a.Union(b)
	want := []records.Row{{"A"}, {"B"}, {"C"}}
	if !reflect.DeepEqual(a.Rows(), want) {
		t.Fatalf("rows = %v, want %v", a.Rows(), want)
	}
}
