package corrector

import (
	"container/heap"
	"math"
	"slices"

	"github.com/happyhackingspace/imt/wordgraph"
)

// hypothesis is a candidate correction: the best uncorrected path up to a
// start point, followed by continuation arcs.
type hypothesis struct {
	score      float64
	startState int
	startArc   int // -1 for a state start
	startWord  int
	arcs       []int
	seq        int
}

func (h *hypothesis) clone() *hypothesis {
	c := *h
	c.arcs = slices.Clone(h.arcs)
	return &c
}

// queue is a max-heap on score. Among equal scores the most recently pushed
// hypothesis comes first.
type queue []*hypothesis

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score > q[j].score
	}
	return q[i].seq > q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*hypothesis)) }

func (q *queue) Pop() any {
	old := *q
	h := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return h
}

type search struct {
	q   queue
	seq int
}

func (s *search) push(h *hypothesis) {
	h.seq = s.seq
	s.seq++
	heap.Push(&s.q, h)
}

func (s *search) pop() *hypothesis { return heap.Pop(&s.q).(*hypothesis) }

func (s *search) len() int { return s.q.Len() }

// isPruned reports whether a known arc carries a word below the threshold.
func (s *Session) isPruned(a *wordgraph.Arc) bool {
	if s.cfg.ConfidenceThreshold <= 0 || a.IsUnknown {
		return false
	}
	for _, c := range a.WordConfidences {
		if c < s.cfg.ConfidenceThreshold {
			return true
		}
	}
	return false
}

// startHypotheses seeds one hypothesis per reachable state and one per
// interior word boundary of every multi-word arc that is not pruned.
func (s *Session) startHypotheses(sr *search, prefixLen int) {
	wgW, ecmW := s.cfg.WordGraphWeight, s.cfg.EcmWeight
	for state := 0; state < s.graph.StateCount(); state++ {
		esi := &s.stateEsi[state]
		if esi.Len() <= prefixLen || math.IsInf(s.rest[state], -1) {
			continue
		}
		score := ecmW*(-esi.Scores[prefixLen]) + wgW*(s.stateBestWg[state][prefixLen]+s.rest[state])
		sr.push(&hypothesis{score: score, startState: state, startArc: -1})
	}

	for k := 0; k < s.graph.ArcCount(); k++ {
		a := s.graph.Arc(k)
		if len(a.Words) < 2 || s.arcEsi[k] == nil || s.isPruned(&a) || math.IsInf(s.rest[a.NextState], -1) {
			continue
		}
		wg := s.forward[a.PrevState] + a.Score
		for i := 0; i < len(a.Words)-1; i++ {
			esi := &s.arcEsi[k][i]
			if esi.Len() <= prefixLen {
				continue
			}
			score := ecmW*(-esi.Scores[prefixLen]) + wgW*(wg+s.rest[a.NextState])
			sr.push(&hypothesis{score: score, startState: a.NextState, startArc: k, startWord: i})
		}
	}
}

func (h *hypothesis) lastState(g *wordgraph.Graph) int {
	if len(h.arcs) == 0 {
		return h.startState
	}
	return g.Arc(h.arcs[len(h.arcs)-1]).NextState
}

// nBest runs the best-first search until n hypotheses reach a final state.
func (s *Session) nBest(sr *search, n int) []*hypothesis {
	var accepted []*hypothesis
	wgW := s.cfg.WordGraphWeight
	for len(accepted) < n && sr.len() > 0 {
		h := sr.pop()
		last := h.lastState(s.graph)
		if s.graph.IsFinal(last) {
			accepted = append(accepted, h)
			continue
		}
		if s.cfg.ConfidenceThreshold <= 0 {
			if path := s.graph.BestPathFromState(last); len(path) > 0 {
				h.arcs = append(h.arcs, path...)
				accepted = append(accepted, h)
			}
			continue
		}

		base := h.score - wgW*s.rest[last]
		next := s.graph.NextArcs(last)
		enqueued := false
		for i, k := range next {
			a := s.graph.Arc(k)
			if s.isPruned(&a) || math.IsInf(s.rest[a.NextState], -1) {
				continue
			}
			nh := h
			if i < len(next)-1 {
				nh = h.clone()
			}
			nh.score = base + wgW*(a.Score+s.rest[a.NextState])
			nh.arcs = append(nh.arcs, k)
			sr.push(nh)
			enqueued = true
		}
		if !enqueued && (h.startArc != -1 || len(h.arcs) > 0) {
			if path := s.graph.BestPathFromState(last); len(path) > 0 {
				h.arcs = append(h.arcs, path...)
				accepted = append(accepted, h)
			}
		}
	}
	return accepted
}
