package corrector

import (
	"slices"

	"github.com/happyhackingspace/imt/alignment"
	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// build turns an accepted hypothesis into a result: the lattice words that
// best explain the prefix, reconciled with what was actually typed, then
// the continuation arcs.
func (s *Session) build(h *hypothesis, prefix []string, isLastWordComplete bool) *translation.Result {
	b := &s.builder
	b.Reset()
	var uncorrectedLen int
	if h.startArc == -1 {
		s.addBestPrefixState(b, len(prefix), h.startState)
		uncorrectedLen = b.Len()
	} else {
		s.addBestPrefixSubState(b, len(prefix), h.startArc, h.startWord)
		first := s.graph.Arc(h.startArc)
		uncorrectedLen = b.Len() - (len(first.Words) - h.startWord) + 1
	}

	cols := s.model.CorrectPrefix(b, uncorrectedLen, prefix, isLastWordComplete)
	for _, k := range h.arcs {
		a := s.graph.Arc(k)
		appendArc(b, &a, false, cols)
		cols = 0
	}
	return b.ToResult(s.source, len(prefix))
}

// addBestPrefixState appends the arcs of the best path from the initial
// state to state that explains the first pos typed words.
func (s *Session) addBestPrefixState(b *translation.Builder, pos, state int) {
	var path []int
	for state != 0 {
		k := s.stateBestPrev[state][pos]
		a := s.graph.Arc(k)
		for i := len(a.Words) - 1; i >= 0; i-- {
			pos = s.arcEsi[k][i].PrevPositions()[pos]
		}
		path = append(path, k)
		state = a.PrevState
	}
	slices.Reverse(path)
	for _, k := range path {
		a := s.graph.Arc(k)
		appendArc(b, &a, true, 0)
	}
}

// addBestPrefixSubState is addBestPrefixState for a start point after word
// index word of arc k. The whole arc is appended.
func (s *Session) addBestPrefixSubState(b *translation.Builder, pos, k, word int) {
	a := s.graph.Arc(k)
	for i := word; i >= 0; i-- {
		pos = s.arcEsi[k][i].PrevPositions()[pos]
	}
	s.addBestPrefixState(b, pos, a.PrevState)
	appendArc(b, &a, true, 0)
}

// appendArc adds the words of a and closes their phrase. cols unaligned
// columns are prepended for words appended earlier that no phrase covers.
func appendArc(b *translation.Builder, a *wordgraph.Arc, isPrefix bool, cols int) {
	for i, w := range a.Words {
		b.AppendWord(w, a.WordConfidences[i], !isPrefix && a.IsUnknown)
	}
	if len(a.Words) == 0 && cols == 0 {
		return
	}
	m := a.Alignment.Clone()
	if cols > 0 {
		m = alignment.NewMatrix(a.Alignment.Rows(), a.Alignment.Cols()+cols)
		for i := 0; i < a.Alignment.Rows(); i++ {
			for j := 0; j < a.Alignment.Cols(); j++ {
				m.Set(i, cols+j, a.Alignment.Get(i, j))
			}
		}
	}
	b.MarkPhrase(a.SourceRange, m)
}
