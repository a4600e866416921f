package corrector

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/happyhackingspace/imt/alignment"
	"github.com/happyhackingspace/imt/ecm"
	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// link builds an arc whose words are all aligned to source words
// [src, src+srcLen).
func link(prev, next int, score float64, src, srcLen int, words ...string) wordgraph.Arc {
	a := alignment.NewMatrix(srcLen, len(words))
	for i := 0; i < srcLen; i++ {
		for j := range words {
			a.Set(i, j, true)
		}
	}
	conf := make([]float64, len(words))
	for j := range conf {
		conf[j] = 0.9
	}
	return wordgraph.Arc{
		PrevState:       prev,
		NextState:       next,
		Score:           score,
		Words:           words,
		WordConfidences: conf,
		SourceRange:     alignment.Range{Start: src, End: src + srcLen},
		Alignment:       a,
	}
}

func newModel(t *testing.T) *ecm.Model {
	t.Helper()
	m, err := ecm.New(ecm.DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newSession(t *testing.T, source []string, arcs []wordgraph.Arc, finals []int, cfg Config) *Session {
	t.Helper()
	g, err := wordgraph.New(arcs, finals, 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(newModel(t), source, g, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func twoWords(t *testing.T) *Session {
	return newSession(t, []string{"x", "y"}, []wordgraph.Arc{
		link(0, 1, -1, 0, 1, "a"),
		link(1, 2, -1, 1, 1, "b"),
	}, []int{2}, DefaultConfig())
}

func TestScenario(t *testing.T) {
	s := twoWords(t)

	results := s.Correct(nil, true, 1)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if got := results[0].Target(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("empty prefix: Target = %v, want [a b]", got)
	}

	results = s.Correct([]string{"a"}, true, 1)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if got := r.Target(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("prefix [a]: Target = %v, want [a b]", got)
	}
	if !r.WordSources()[0].Has(translation.Prefix) {
		t.Errorf("prefix [a]: word 0 source = %v, want prefix", r.WordSources()[0])
	}
	if r.WordSources()[1].Has(translation.Prefix) {
		t.Errorf("prefix [a]: word 1 source = %v, want no prefix", r.WordSources()[1])
	}

	results = s.Correct([]string{"a", "c"}, true, 1)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r = results[0]
	if got := r.Target(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("prefix [a c]: Target = %v, want [a c]", got)
	}
	if got := r.Confidences()[1]; got != -1 {
		t.Errorf("prefix [a c]: confidence of substituted word = %v, want -1", got)
	}
	checkResultShape(t, r)
}

func TestIdempotent(t *testing.T) {
	s := twoWords(t)
	prefix := []string{"a", "c"}
	first := describe(s.Candidates(prefix, false, 3))
	second := describe(s.Candidates(prefix, false, 3))
	if first != second {
		t.Errorf("repeated call differs:\n%s\nvs\n%s", first, second)
	}
}

func TestEmptyGraph(t *testing.T) {
	g, err := wordgraph.New(nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(newModel(t), []string{"x"}, g, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, prefix := range [][]string{nil, {"a"}, {"a", "b"}} {
		if got := s.Correct(prefix, true, 5); len(got) != 0 {
			t.Errorf("Correct(%v) on empty graph = %d results, want 0", prefix, len(got))
		}
	}
}

func TestNonPositiveN(t *testing.T) {
	s := twoWords(t)
	if got := s.Correct([]string{"a"}, true, 0); len(got) != 0 {
		t.Errorf("n = 0 gave %d results", len(got))
	}
	// the caches still follow the prefix
	if got := s.Prefix(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Prefix = %v, want [a]", got)
	}
}

func TestIncompleteWordIsCompleted(t *testing.T) {
	s := newSession(t, []string{"la", "bici"}, []wordgraph.Arc{
		link(0, 1, -1, 0, 1, "the"),
		link(1, 2, -1, 1, 1, "bicycle"),
	}, []int{2}, DefaultConfig())

	r := s.Correct([]string{"the", "bic"}, false, 1)[0]
	if got := r.Target(); !reflect.DeepEqual(got, []string{"the", "bicycle"}) {
		t.Errorf("Target = %v, want [the bicycle]", got)
	}
	if got := r.WordSources()[1]; got != translation.Prefix|translation.Smt {
		t.Errorf("word 1 source = %v, want prefix|smt", got)
	}

	// once the word is declared complete it is taken literally
	r = s.Correct([]string{"the", "bic"}, true, 1)[0]
	if got := r.Target(); len(got) < 2 || got[1] != "bic" {
		t.Errorf("complete: Target = %v, want it to start with [the bic]", got)
	}
	if got := r.Confidences()[1]; got != -1 {
		t.Errorf("complete: confidence of typed word = %v, want -1", got)
	}
}

func TestCorrectionStartsInsidePhrase(t *testing.T) {
	s := newSession(t, []string{"x", "y"}, []wordgraph.Arc{
		link(0, 1, -1, 0, 1, "a", "b"),
		link(1, 2, -1, 1, 1, "c"),
	}, []int{2}, DefaultConfig())

	r := s.Correct([]string{"a"}, true, 1)[0]
	if got := r.Target(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Target = %v, want [a b c]", got)
	}
	want := []translation.Sources{translation.Prefix | translation.Smt, translation.Smt, translation.Smt}
	if got := r.WordSources(); !reflect.DeepEqual(got, want) {
		t.Errorf("WordSources = %v, want %v", got, want)
	}
	if ph := r.Phrases(); len(ph) != 2 || ph[0].TargetCut != 2 {
		t.Errorf("Phrases = %+v, want the first phrase to keep both words", ph)
	}
	checkResultShape(t, r)
}

func TestThresholdPrunesArcs(t *testing.T) {
	arcs := []wordgraph.Arc{
		link(0, 1, -1, 0, 1, "a"),
		link(1, 2, -0.1, 1, 1, "b"),
		link(1, 2, -1, 1, 1, "c"),
	}
	arcs[1].WordConfidences = []float64{0.2}

	s := newSession(t, []string{"x", "y"}, arcs, []int{2}, DefaultConfig())
	if got := s.Correct(nil, true, 1)[0].Target(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("without pruning: Target = %v, want [a b]", got)
	}

	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.5
	s = newSession(t, []string{"x", "y"}, arcs, []int{2}, cfg)
	if got := s.Correct(nil, true, 1)[0].Target(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("with pruning: Target = %v, want [a c]", got)
	}

	arcs[1].IsUnknown = true
	s = newSession(t, []string{"x", "y"}, arcs, []int{2}, cfg)
	if got := s.Correct(nil, true, 1)[0].Target(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("unknown arc: Target = %v, want [a b]", got)
	}
}

func TestNBestOrder(t *testing.T) {
	s := newSession(t, []string{"x", "y"}, []wordgraph.Arc{
		link(0, 1, -1, 0, 1, "a"),
		link(1, 2, -0.5, 1, 1, "b"),
		link(1, 2, -2, 1, 1, "c"),
	}, []int{2}, Config{EcmWeight: 1, WordGraphWeight: 1, ConfidenceThreshold: 0.5})

	cands := s.Candidates(nil, true, 5)
	if len(cands) < 2 {
		t.Fatalf("got %d candidates, want at least 2", len(cands))
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Score > cands[i-1].Score {
			t.Errorf("candidate %d scores %v above candidate %d (%v)", i, cands[i].Score, i-1, cands[i-1].Score)
		}
	}
	if got := cands[0].Result.Target(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("best = %v, want [a b]", got)
	}
}

func TestSourceMismatch(t *testing.T) {
	g, err := wordgraph.New([]wordgraph.Arc{link(0, 1, -1, 0, 2, "a")}, []int{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSession(newModel(t), []string{"x"}, g, DefaultConfig()); !errors.Is(err, ErrSourceMismatch) {
		t.Errorf("err = %v, want ErrSourceMismatch", err)
	}
}

func lattice() ([]string, []wordgraph.Arc, []int) {
	source := []string{"el", "gato", "negro", "sentado"}
	arcs := []wordgraph.Arc{
		link(0, 1, -0.5, 0, 1, "the"),
		link(0, 1, -0.7, 0, 1, "a"),
		link(1, 2, -1.0, 1, 2, "black", "cat"),
		link(1, 2, -1.2, 1, 2, "dark"),
		link(2, 3, -0.3, 3, 1, "sat"),
		link(1, 3, -1.9, 1, 3, "cat", "sat", "down"),
		link(3, 4, -0.4, 3, 1, "down"),
		link(3, 4, -0.9, 3, 1, "today"),
		link(5, 4, -0.1, 3, 1, "orphan"),
		link(2, 6, -0.05, 2, 2, "is", "purring"),
	}
	arcs[7].WordConfidences = []float64{0.3}
	return source, arcs, []int{4}
}

func TestDeadEndIsNeverProposed(t *testing.T) {
	source, arcs, finals := lattice()
	prefixes := [][]string{nil, {"the", "dark"}, {"the", "black", "cat", "is"}}
	for _, threshold := range []float64{0, 0.5} {
		cfg := DefaultConfig()
		cfg.ConfidenceThreshold = threshold
		s := newSession(t, source, arcs, finals, cfg)
		for _, prefix := range prefixes {
			cands := s.Candidates(prefix, true, 10)
			if len(cands) == 0 {
				t.Errorf("threshold %v, prefix %v: no candidates", threshold, prefix)
			}
			for _, c := range cands {
				target := c.Result.Target()
				if slices.Contains(target, "purring") {
					t.Errorf("threshold %v, prefix %v: %v runs into the dead end", threshold, prefix, target)
				}
				if prefix == nil {
					if last := target[len(target)-1]; last != "down" && last != "today" {
						t.Errorf("threshold %v: %v does not reach the final state", threshold, target)
					}
				}
				checkPrefix(t, c.Result, prefix, true)
			}
		}
	}
}

func TestIncrementalMatchesFresh(t *testing.T) {
	type edit struct {
		prefix   []string
		complete bool
	}
	edits := []edit{
		{nil, true},
		{[]string{"t"}, false},
		{[]string{"th"}, false},
		{[]string{"the"}, false},
		{[]string{"the"}, true},
		{[]string{"the", "b"}, false},
		{[]string{"the", "bl"}, false},
		{[]string{"the", "black"}, true},
		{[]string{"the", "black", "dog"}, true},
		{[]string{"the", "black"}, true},
		{[]string{"the", "black", "cab"}, false},
		{[]string{"the", "black", "cat", "sat", "dow"}, false},
		{[]string{"a", "black"}, true},
		{[]string{"a", "black"}, false},
		{nil, true},
	}

	source, arcs, finals := lattice()
	for _, threshold := range []float64{0, 0.5} {
		cfg := DefaultConfig()
		cfg.ConfidenceThreshold = threshold
		incremental := newSession(t, source, arcs, finals, cfg)
		for _, e := range edits {
			got := incremental.Candidates(e.prefix, e.complete, 3)
			fresh := newSession(t, source, arcs, finals, cfg)
			want := fresh.Candidates(e.prefix, e.complete, 3)
			if describe(got) != describe(want) {
				t.Errorf("threshold %v, prefix %v complete=%v:\nincremental:\n%s\nfresh:\n%s",
					threshold, e.prefix, e.complete, describe(got), describe(want))
			}
			if len(got) == 0 {
				t.Errorf("threshold %v, prefix %v: no candidates", threshold, e.prefix)
			}
			for _, c := range got {
				checkResultShape(t, c.Result)
				checkPrefix(t, c.Result, e.prefix, e.complete)
			}
		}
	}
}

// checkPrefix verifies that the result starts with the typed prefix, the
// last word only up to its typed part when it is incomplete.
func checkPrefix(t *testing.T, r *translation.Result, prefix []string, complete bool) {
	t.Helper()
	target := r.Target()
	if len(target) < len(prefix) {
		t.Errorf("target %v shorter than prefix %v", target, prefix)
		return
	}
	for i, w := range prefix {
		if i == len(prefix)-1 && !complete {
			if !strings.HasPrefix(target[i], w) {
				t.Errorf("target %v does not continue incomplete %q", target, w)
			}
			continue
		}
		if target[i] != w {
			t.Errorf("target %v does not start with %v", target, prefix)
			return
		}
	}
	for i := range prefix {
		if !r.WordSources()[i].Has(translation.Prefix) {
			t.Errorf("target %v: word %d source = %v, want prefix", target, i, r.WordSources()[i])
		}
	}
}

func checkResultShape(t *testing.T, r *translation.Result) {
	t.Helper()
	n := len(r.Target())
	a := r.Alignment()
	if a.Rows() != len(r.Source()) || a.Cols() != n {
		t.Errorf("alignment is %dx%d, want %dx%d", a.Rows(), a.Cols(), len(r.Source()), n)
	}
	if len(r.Confidences()) != n || len(r.WordSources()) != n {
		t.Errorf("%d words, %d confidences, %d sources", n, len(r.Confidences()), len(r.WordSources()))
	}
	prev := 0
	ph := r.Phrases()
	for _, p := range ph {
		if p.TargetCut <= prev {
			t.Errorf("phrase cuts not increasing: %+v", ph)
			break
		}
		prev = p.TargetCut
	}
	if n > 0 && (len(ph) == 0 || ph[len(ph)-1].TargetCut != n) {
		t.Errorf("last cut of %+v does not equal %d", ph, n)
	}
}

func describe(cands []Candidate) string {
	var sb strings.Builder
	for _, c := range cands {
		r := c.Result
		fmt.Fprintf(&sb, "%.9f %v %v %v %v %v\n", c.Score, r.Target(), r.Confidences(), r.WordSources(), r.Phrases(), r.Alignment().Pairs())
	}
	return sb.String()
}

func TestScoresAreFinite(t *testing.T) {
	source, arcs, finals := lattice()
	s := newSession(t, source, arcs, finals, DefaultConfig())
	for _, c := range s.Candidates([]string{"the", "dark"}, true, 5) {
		if math.IsInf(c.Score, 0) || math.IsNaN(c.Score) {
			t.Errorf("candidate %v has score %v", c.Result.Target(), c.Score)
		}
	}
}
