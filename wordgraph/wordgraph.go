// Package wordgraph implements the translation lattice: a weighted DAG of
// candidate target words whose arcs are kept in topological order.
package wordgraph

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/happyhackingspace/imt/alignment"
)

// LogZero is the score of an unreachable state.
var LogZero = math.Inf(-1)

// Validation errors, wrapped with the offending arc or state.
var (
	ErrDanglingState  = errors.New("dangling state id")
	ErrSelfLoop       = errors.New("self loop")
	ErrEntersInitial  = errors.New("arc enters the initial state")
	ErrNotTopological = errors.New("arcs not in topological order")
	ErrShape          = errors.New("confidences or alignment do not match words")
	ErrSourceRange    = errors.New("invalid source range")
)

// Arc is a lattice edge. Scores are in the log domain. A WordConfidences
// entry of -1 means unknown. Alignment has one row per source word of
// SourceRange and one column per word.
type Arc struct {
	PrevState       int               `json:"prev_state"`
	NextState       int               `json:"next_state"`
	Score           float64           `json:"score"`
	Words           []string          `json:"words"`
	WordConfidences []float64         `json:"word_confidences,omitempty"`
	SourceRange     alignment.Range   `json:"source_range"`
	Alignment       *alignment.Matrix `json:"alignment,omitempty"`
	IsUnknown       bool              `json:"is_unknown,omitempty"`
}

// Graph is an immutable, validated word graph. State 0 is the initial state.
// A Graph is safe for concurrent use.
type Graph struct {
	arcs              []Arc
	finalStates       []int
	isFinal           []bool
	initialStateScore float64
	stateCount        int
	next, prev        [][]int

	restOnce sync.Once
	rest     []float64
	fwdOnce  sync.Once
	fwd      []float64
}

// New validates the arcs and builds the adjacency lists. Missing word
// confidences are filled with -1 and a missing alignment becomes an empty
// matrix of the right shape. The arcs are copied.
func New(arcs []Arc, finalStates []int, initialStateScore float64) (*Graph, error) {
	g := &Graph{
		arcs:              make([]Arc, len(arcs)),
		initialStateScore: initialStateScore,
		stateCount:        1,
	}
	for k, a := range arcs {
		if a.PrevState < 0 || a.NextState < 0 {
			return nil, fmt.Errorf("wordgraph: arc %d: %w", k, ErrDanglingState)
		}
		g.stateCount = max(g.stateCount, a.PrevState+1, a.NextState+1)
	}

	left := make([]bool, g.stateCount)
	for k, a := range arcs {
		switch {
		case a.PrevState == a.NextState:
			return nil, fmt.Errorf("wordgraph: arc %d: %w", k, ErrSelfLoop)
		case a.NextState == 0:
			return nil, fmt.Errorf("wordgraph: arc %d: %w", k, ErrEntersInitial)
		case left[a.NextState]:
			return nil, fmt.Errorf("wordgraph: arc %d enters state %d after it was left: %w", k, a.NextState, ErrNotTopological)
		}
		left[a.PrevState] = true

		a.Words = slices.Clone(a.Words)
		switch {
		case len(a.WordConfidences) == 0:
			a.WordConfidences = make([]float64, len(a.Words))
			for i := range a.WordConfidences {
				a.WordConfidences[i] = -1
			}
		case len(a.WordConfidences) != len(a.Words):
			return nil, fmt.Errorf("wordgraph: arc %d: %d confidences for %d words: %w", k, len(a.WordConfidences), len(a.Words), ErrShape)
		default:
			a.WordConfidences = slices.Clone(a.WordConfidences)
		}
		if a.SourceRange.Start < 0 || a.SourceRange.End < a.SourceRange.Start {
			return nil, fmt.Errorf("wordgraph: arc %d: %v: %w", k, a.SourceRange, ErrSourceRange)
		}
		if a.Alignment == nil {
			a.Alignment = alignment.NewMatrix(a.SourceRange.Len(), len(a.Words))
		} else if a.Alignment.Rows() != a.SourceRange.Len() || a.Alignment.Cols() != len(a.Words) {
			return nil, fmt.Errorf("wordgraph: arc %d: alignment is %dx%d, want %dx%d: %w",
				k, a.Alignment.Rows(), a.Alignment.Cols(), a.SourceRange.Len(), len(a.Words), ErrShape)
		} else {
			a.Alignment = a.Alignment.Clone()
		}
		g.arcs[k] = a
	}

	g.isFinal = make([]bool, g.stateCount)
	for _, s := range finalStates {
		if s < 0 || s >= g.stateCount {
			return nil, fmt.Errorf("wordgraph: final state %d: %w", s, ErrDanglingState)
		}
		if !g.isFinal[s] {
			g.isFinal[s] = true
			g.finalStates = append(g.finalStates, s)
		}
	}
	slices.Sort(g.finalStates)

	g.next = make([][]int, g.stateCount)
	g.prev = make([][]int, g.stateCount)
	for k, a := range g.arcs {
		g.next[a.PrevState] = append(g.next[a.PrevState], k)
		g.prev[a.NextState] = append(g.prev[a.NextState], k)
	}
	return g, nil
}

// IsEmpty reports whether the graph has no arcs.
func (g *Graph) IsEmpty() bool { return len(g.arcs) == 0 }

func (g *Graph) StateCount() int { return g.stateCount }

func (g *Graph) ArcCount() int { return len(g.arcs) }

func (g *Graph) InitialStateScore() float64 { return g.initialStateScore }

// Arc returns arc k. Its slices are shared with the graph and must not be
// modified.
func (g *Graph) Arc(k int) Arc { return g.arcs[k] }

// Arcs returns a copy of the arc list.
func (g *Graph) Arcs() []Arc { return slices.Clone(g.arcs) }

// FinalStates returns the final states in ascending order.
func (g *Graph) FinalStates() []int { return slices.Clone(g.finalStates) }

func (g *Graph) IsFinal(state int) bool { return g.isFinal[state] }

// NextArcs returns the arcs leaving state, in arc order. The slice must not
// be modified.
func (g *Graph) NextArcs(state int) []int { return g.next[state] }

// PrevArcs returns the arcs entering state, in arc order. The slice must not
// be modified.
func (g *Graph) PrevArcs(state int) []int { return g.prev[state] }

// SourceLen returns the smallest source length covering every arc.
func (g *Graph) SourceLen() int {
	n := 0
	for _, a := range g.arcs {
		n = max(n, a.SourceRange.End)
	}
	return n
}

// RestScores returns, for every state, the best score of completing a path
// to a final state. Final states start from the initial state score;
// states that cannot reach a final state score LogZero.
func (g *Graph) RestScores() []float64 {
	g.restOnce.Do(func() {
		g.rest = make([]float64, g.stateCount)
		for s := range g.rest {
			g.rest[s] = LogZero
		}
		for _, s := range g.finalStates {
			g.rest[s] = g.initialStateScore
		}
		for k := len(g.arcs) - 1; k >= 0; k-- {
			a := &g.arcs[k]
			if score := a.Score + g.rest[a.NextState]; score > g.rest[a.PrevState] {
				g.rest[a.PrevState] = score
			}
		}
	})
	return slices.Clone(g.rest)
}

// ForwardScores returns, for every state, the best score of a path from
// the initial state, which itself scores 0.
func (g *Graph) ForwardScores() []float64 {
	g.fwdOnce.Do(func() {
		g.fwd = make([]float64, g.stateCount)
		for s := range g.fwd {
			g.fwd[s] = LogZero
		}
		g.fwd[0] = 0
		for k := range g.arcs {
			a := &g.arcs[k]
			if score := g.fwd[a.PrevState] + a.Score; score > g.fwd[a.NextState] {
				g.fwd[a.NextState] = score
			}
		}
	})
	return slices.Clone(g.fwd)
}

// BestPathFromState returns the arcs of the best-scoring path from state to
// a final state, in forward order. It is empty when no final state other
// than state itself is reachable.
func (g *Graph) BestPathFromState(state int) []int {
	scores := make([]float64, g.stateCount)
	bestPrev := make([]int, g.stateCount)
	for s := range scores {
		scores[s] = LogZero
		bestPrev[s] = -1
	}
	if state == 0 {
		scores[state] = g.initialStateScore
	} else {
		scores[state] = 0
	}

	for k := range g.arcs {
		a := &g.arcs[k]
		if math.IsInf(scores[a.PrevState], -1) {
			continue
		}
		if score := scores[a.PrevState] + a.Score; score > scores[a.NextState] {
			scores[a.NextState] = score
			bestPrev[a.NextState] = k
		}
	}

	best, bestScore := -1, LogZero
	for _, f := range g.finalStates {
		if scores[f] > bestScore {
			best, bestScore = f, scores[f]
		}
	}
	if best < 0 {
		return nil
	}

	var path []int
	for s := best; s != state; {
		k := bestPrev[s]
		if k < 0 {
			return nil
		}
		path = append(path, k)
		s = g.arcs[k].PrevState
	}
	slices.Reverse(path)
	return path
}
