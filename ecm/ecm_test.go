package ecm

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/happyhackingspace/imt/alignment"
	"github.com/happyhackingspace/imt/editdistance"
	"github.com/happyhackingspace/imt/translation"
)

func TestCosts(t *testing.T) {
	c := DefaultParameters().Costs()
	e := 0.2 / 256
	if math.Abs(c.Hit-(-math.Log(0.8))) > 1e-12 {
		t.Errorf("Hit = %v, want %v", c.Hit, -math.Log(0.8))
	}
	if math.Abs(c.Insertion-(-math.Log(e))) > 1e-12 {
		t.Errorf("Insertion = %v, want %v", c.Insertion, -math.Log(e))
	}
	if c.Insertion != c.Substitution || c.Substitution != c.Deletion {
		t.Errorf("equal factors should give equal costs: %+v", c)
	}

	p := DefaultParameters()
	p.VocabularySize = 0
	c = p.Costs()
	if math.Abs(c.Deletion-(-math.Log(0.2/3))) > 1e-12 {
		t.Errorf("vocabulary-free Deletion = %v, want %v", c.Deletion, -math.Log(0.2/3))
	}
}

func TestValidate(t *testing.T) {
	tests := []func(*Parameters){
		func(p *Parameters) { p.HitProbability = 0 },
		func(p *Parameters) { p.HitProbability = 1 },
		func(p *Parameters) { p.VocabularySize = -1 },
		func(p *Parameters) { p.DeletionFactor = 0 },
	}
	for i, mutate := range tests {
		p := DefaultParameters()
		mutate(&p)
		if _, err := New(p); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("case %d: err = %v, want ErrInvalidParameters", i, err)
		}
	}
	if err := DefaultParameters().Validate(); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
}

func TestSetupAndExtend(t *testing.T) {
	m, err := New(DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	c := m.Costs()

	var initial ScoreInfo
	m.SetupInitial(&initial)
	m.ExtendInitial(&initial, []string{"a"})
	m.ExtendInitial(&initial, []string{"b"})
	ins := c.InsertionCost("a")
	if !reflect.DeepEqual(initial.Scores, []float64{0, ins, ins + c.InsertionCost("b")}) {
		t.Errorf("initial scores = %v", initial.Scores)
	}
	if !reflect.DeepEqual(initial.Ops, []editdistance.Op{editdistance.None, editdistance.Insert, editdistance.Insert}) {
		t.Errorf("initial ops = %v", initial.Ops)
	}

	var word ScoreInfo
	m.Setup(&word, &initial, "a")
	m.Extend(&word, &initial, "a", []string{"a", "b"}, true)
	if word.Len() != 3 {
		t.Fatalf("word row has %d positions, want 3", word.Len())
	}
	if word.Scores[0] != c.DeletionCost("a") {
		t.Errorf("Scores[0] = %v, want deletion cost", word.Scores[0])
	}
	if word.Ops[1] != editdistance.Hit || word.Ops[2] != editdistance.Insert {
		t.Errorf("ops = %v, want [none hit insert]", word.Ops)
	}
	if got := word.PrevPositions(); !reflect.DeepEqual(got, []int{0, 0, 0}) {
		t.Errorf("PrevPositions = %v, want [0 0 0]", got)
	}
}

func TestPrevPositions(t *testing.T) {
	N, H, I, D, S := editdistance.None, editdistance.Hit, editdistance.Insert, editdistance.Delete, editdistance.Substitute
	tests := []struct {
		ops  []editdistance.Op
		want []int
	}{
		{[]editdistance.Op{N, H, S}, []int{0, 0, 1}},
		{[]editdistance.Op{N, D, D}, []int{0, 1, 2}},
		{[]editdistance.Op{N, D, I, I}, []int{0, 1, 1, 1}},
		{[]editdistance.Op{N, H, I, I}, []int{0, 0, 0, 0}},
		{[]editdistance.Op{N, I}, []int{0, 0}},
	}
	for _, tt := range tests {
		s := ScoreInfo{Scores: make([]float64, len(tt.ops)), Ops: tt.ops}
		if got := s.PrevPositions(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PrevPositions(%v) = %v, want %v", tt.ops, got, tt.want)
		}
	}
}

func TestTruncateAndUpdate(t *testing.T) {
	s := &ScoreInfo{Scores: []float64{0, 1, 2}, Ops: []editdistance.Op{editdistance.None, editdistance.Hit, editdistance.Hit}}
	s.Truncate(1)
	if s.Len() != 1 || len(s.Ops) != 1 {
		t.Fatalf("Truncate(1) left %d scores, %d ops", s.Len(), len(s.Ops))
	}
	s.Truncate(5)
	if s.Len() != 1 {
		t.Errorf("Truncate past the end changed length to %d", s.Len())
	}

	src := &ScoreInfo{Scores: []float64{9, 8, 7}, Ops: []editdistance.Op{editdistance.None, editdistance.Delete, editdistance.Insert}}
	s.UpdatePositions(src, []int{0, 1, 2})
	if !reflect.DeepEqual(s.Scores, src.Scores) || !reflect.DeepEqual(s.Ops, src.Ops) {
		t.Errorf("UpdatePositions = %+v, want %+v", s, src)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a write two past the end")
		}
	}()
	s.Truncate(1)
	s.UpdatePositions(src, []int{2})
}

func TestCorrectPrefix(t *testing.T) {
	m, err := New(DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}

	b := translation.NewBuilder()
	for k, w := range []string{"a", "b"} {
		b.AppendWord(w, 0.5, false)
		a := alignment.NewMatrix(1, 1)
		a.Set(0, 0, true)
		b.MarkPhrase(alignment.Range{Start: k, End: k + 1}, a)
	}
	if cols := m.CorrectPrefix(b, 2, []string{"a", "c"}, true); cols != 0 {
		t.Errorf("pending columns = %d, want 0", cols)
	}
	if got := b.Words(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Words = %v, want [a c]", got)
	}
	if got := b.Confidences(); got[1] != -1 {
		t.Errorf("substituted confidence = %v, want -1", got[1])
	}

	empty := translation.NewBuilder()
	if cols := m.CorrectPrefix(empty, 0, []string{"x", "y"}, true); cols != 2 {
		t.Errorf("pending columns = %d, want 2", cols)
	}
	if got := empty.Words(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Words = %v, want [x y]", got)
	}
}
