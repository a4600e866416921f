// Package corrector computes the n-best completions of a word graph that
// agree with a prefix typed by the user, updating its caches incrementally
// as the prefix is edited.
package corrector

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/happyhackingspace/imt/ecm"
	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// ErrSourceMismatch is returned when arcs cover source words the sentence
// does not have.
var ErrSourceMismatch = errors.New("word graph does not fit the source sentence")

type token struct {
	text     string
	complete bool
}

// Candidate is a correction together with its search score.
type Candidate struct {
	Result *translation.Result
	Score  float64
}

// Session holds the per-sentence correction state. Every state and every
// word of every arc owns a score row over the typed prefix; rows are
// truncated to the part shared with the previous prefix and extended over
// the new suffix on each call. A Session is not safe for concurrent use.
type Session struct {
	model  *ecm.Model
	graph  *wordgraph.Graph
	source []string
	cfg    Config

	rest    []float64
	forward []float64

	prefix []token

	stateEsi      []ecm.ScoreInfo
	stateBest     [][]float64 // combined score per prefix length
	stateBestPrev [][]int     // arc that produced stateBest, -1 at state 0
	stateBestWg   [][]float64 // lattice part of stateBest
	arcEsi        [][]ecm.ScoreInfo

	builder translation.Builder // reused by build
}

// NewSession validates that graph fits source and seeds the caches for the
// empty prefix.
func NewSession(model *ecm.Model, source []string, graph *wordgraph.Graph, cfg Config) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("corrector: nil model")
	}
	if graph == nil {
		return nil, fmt.Errorf("corrector: nil word graph")
	}
	if n := graph.SourceLen(); n > len(source) {
		return nil, fmt.Errorf("corrector: arcs cover %d source words, sentence has %d: %w", n, len(source), ErrSourceMismatch)
	}
	s := &Session{
		model:   model,
		graph:   graph,
		source:  slices.Clone(source),
		cfg:     cfg,
		rest:    graph.RestScores(),
		forward: graph.ForwardScores(),
	}
	s.Reset()
	return s, nil
}

// Reset discards the typed prefix and returns to the empty-prefix state.
func (s *Session) Reset() {
	s.prefix = nil
	n := s.graph.StateCount()
	s.stateEsi = make([]ecm.ScoreInfo, n)
	s.stateBest = make([][]float64, n)
	s.stateBestPrev = make([][]int, n)
	s.stateBestWg = make([][]float64, n)
	s.arcEsi = make([][]ecm.ScoreInfo, s.graph.ArcCount())
	if s.graph.IsEmpty() {
		return
	}

	s.model.SetupInitial(&s.stateEsi[0])
	s.updateInitialState(0)
	for k := 0; k < s.graph.ArcCount(); k++ {
		a := s.graph.Arc(k)
		prev := &s.stateEsi[a.PrevState]
		if prev.Len() == 0 {
			continue
		}
		rows := make([]ecm.ScoreInfo, len(a.Words))
		for i, w := range a.Words {
			s.model.Setup(&rows[i], prev, w)
			prev = &rows[i]
		}
		s.arcEsi[k] = rows
		s.updateState(k, 0)
	}
}

// Prefix returns the prefix of the last Correct call.
func (s *Session) Prefix() []string {
	out := make([]string, len(s.prefix))
	for i, t := range s.prefix {
		out[i] = t.text
	}
	return out
}

// Correct returns up to n corrections of the word graph that start with
// prefix, best first. isLastWordComplete is false while the last word is
// still being typed.
func (s *Session) Correct(prefix []string, isLastWordComplete bool, n int) []*translation.Result {
	cands := s.Candidates(prefix, isLastWordComplete, n)
	out := make([]*translation.Result, len(cands))
	for i, c := range cands {
		out[i] = c.Result
	}
	return out
}

// Candidates is Correct with the search score of every result.
func (s *Session) Candidates(prefix []string, isLastWordComplete bool, n int) []Candidate {
	shared := s.update(prefix, isLastWordComplete)
	if n <= 0 || s.graph.IsEmpty() {
		return []Candidate{}
	}

	var sr search
	s.startHypotheses(&sr, len(prefix))
	starts := sr.len()
	accepted := s.nBest(&sr, n)
	slog.Debug("Correction", "prefix", len(prefix), "shared", shared, "starts", starts, "accepted", len(accepted))

	out := make([]Candidate, 0, len(accepted))
	for _, h := range accepted {
		out = append(out, Candidate{Result: s.build(h, prefix, isLastWordComplete), Score: h.score})
	}
	return out
}

// update brings the caches in line with prefix and returns the number of
// tokens shared with the previous prefix.
func (s *Session) update(prefix []string, isLastWordComplete bool) int {
	tokens := make([]token, len(prefix))
	for i, w := range prefix {
		tokens[i] = token{text: w, complete: i < len(prefix)-1 || isLastWordComplete}
	}
	shared := 0
	for shared < len(tokens) && shared < len(s.prefix) && tokens[shared] == s.prefix[shared] {
		shared++
	}
	s.prefix = tokens
	if s.graph.IsEmpty() {
		return shared
	}

	keep := shared + 1
	for st := range s.stateEsi {
		s.stateEsi[st].Truncate(keep)
		s.stateBest[st] = truncate(s.stateBest[st], keep)
		s.stateBestPrev[st] = truncate(s.stateBestPrev[st], keep)
		s.stateBestWg[st] = truncate(s.stateBestWg[st], keep)
	}
	for k := range s.arcEsi {
		for i := range s.arcEsi[k] {
			s.arcEsi[k][i].Truncate(keep)
		}
	}

	yIncr := prefix[shared:]
	if len(yIncr) == 0 {
		return shared
	}
	s.model.ExtendInitial(&s.stateEsi[0], yIncr)
	s.updateInitialState(keep)
	for k := 0; k < s.graph.ArcCount(); k++ {
		if s.arcEsi[k] == nil {
			continue
		}
		a := s.graph.Arc(k)
		prev := &s.stateEsi[a.PrevState]
		for i, w := range a.Words {
			s.model.Extend(&s.arcEsi[k][i], prev, w, yIncr, isLastWordComplete)
			prev = &s.arcEsi[k][i]
		}
		s.updateState(k, keep)
	}
	return shared
}

func truncate[T any](v []T, n int) []T {
	if n < len(v) {
		return v[:n]
	}
	return v
}

// updateInitialState appends the initial state's own scores from position
// start on.
func (s *Session) updateInitialState(start int) {
	esi := &s.stateEsi[0]
	for j := start; j < esi.Len(); j++ {
		s.stateBest[0] = append(s.stateBest[0], s.cfg.EcmWeight*(-esi.Scores[j]))
		s.stateBestPrev[0] = append(s.stateBestPrev[0], -1)
		s.stateBestWg[0] = append(s.stateBestWg[0], 0)
	}
}

// lastEsi returns the row that ends arc k: its last word, or the
// predecessor state for an arc without words.
func (s *Session) lastEsi(k int) *ecm.ScoreInfo {
	if rows := s.arcEsi[k]; len(rows) > 0 {
		return &rows[len(rows)-1]
	}
	return &s.stateEsi[s.graph.Arc(k).PrevState]
}

// updateState offers arc k's scores from position start on to its
// successor state, keeping the better one per prefix length.
func (s *Session) updateState(k, start int) {
	a := s.graph.Arc(k)
	src := s.lastEsi(k)
	next := a.NextState
	wg := s.forward[a.PrevState] + a.Score

	var positions []int
	for j := start; j < src.Len(); j++ {
		score := s.cfg.EcmWeight*(-src.Scores[j]) + s.cfg.WordGraphWeight*wg
		switch n := len(s.stateBest[next]); {
		case j == n:
			s.stateBest[next] = append(s.stateBest[next], score)
			s.stateBestPrev[next] = append(s.stateBestPrev[next], k)
			s.stateBestWg[next] = append(s.stateBestWg[next], wg)
		case j > n:
			panic(fmt.Sprintf("corrector: state %d best score write at %d past length %d", next, j, n))
		case score > s.stateBest[next][j]:
			s.stateBest[next][j] = score
			s.stateBestPrev[next][j] = k
			s.stateBestWg[next][j] = wg
		default:
			continue
		}
		positions = append(positions, j)
	}
	s.stateEsi[next].UpdatePositions(src, positions)
}
