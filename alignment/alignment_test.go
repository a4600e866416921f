package alignment

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAlignedIndices(t *testing.T) {
	m := NewMatrix(2, 3)
	m.Set(0, 0, true)
	m.Set(1, 0, true)
	m.Set(1, 2, true)

	if got := m.ColumnAlignedIndices(0); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("ColumnAlignedIndices(0) = %v, want [0 1]", got)
	}
	if got := m.RowAlignedIndices(1); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("RowAlignedIndices(1) = %v, want [0 2]", got)
	}
	if m.IsColumnAligned(1) {
		t.Error("column 1 should be unaligned")
	}
}

func TestGiza(t *testing.T) {
	m := NewMatrix(2, 3)
	m.Set(0, 0, true)
	m.Set(1, 2, true)
	got := m.Giza([]string{"la", "casa"}, []string{"the", "big", "house"})
	want := "the big house\nNULL ({ 2 }) la ({ 1 }) casa ({ 3 })\n"
	if got != want {
		t.Errorf("Giza = %q, want %q", got, want)
	}

	empty := NewMatrix(0, 0).Giza(nil, nil)
	if empty != "\nNULL ({ })\n" {
		t.Errorf("empty Giza = %q", empty)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMatrix(1, 1)
	c := m.Clone()
	c.Set(0, 0, true)
	if m.Get(0, 0) {
		t.Error("mutating the clone changed the original")
	}
}

func TestJSON(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(1, 0, true)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"rows":2,"cols":2,"pairs":[[1,0]]}` {
		t.Errorf("Marshal = %s", data)
	}
	var back Matrix
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(m) {
		t.Errorf("decoded %v, want %v", back.String(), m.String())
	}

	if err := json.Unmarshal([]byte(`{"rows":1,"cols":1,"pairs":[[0,3]]}`), &back); err == nil {
		t.Error("expected error for out-of-range pair")
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 2, End: 5}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if !r.Contains(2) || r.Contains(5) {
		t.Error("Contains is not half-open")
	}
}
