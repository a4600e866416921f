package ecm

import (
	"fmt"

	"github.com/happyhackingspace/imt/editdistance"
)

// ScoreInfo is one DP row over the typed prefix: Scores[k] is the cost of
// aligning the first k typed words up to this lattice node, Ops[k] the
// operation that produced it.
type ScoreInfo struct {
	Scores []float64
	Ops    []editdistance.Op
}

// Len returns the number of prefix positions covered.
func (s *ScoreInfo) Len() int { return len(s.Scores) }

// Truncate keeps the first n positions.
func (s *ScoreInfo) Truncate(n int) {
	if n < len(s.Scores) {
		s.Scores = s.Scores[:n]
	}
	if n < len(s.Ops) {
		s.Ops = s.Ops[:n]
	}
}

// UpdatePositions copies the listed positions from src. A position equal to
// the current length appends; anything further is a bookkeeping error.
func (s *ScoreInfo) UpdatePositions(src *ScoreInfo, positions []int) {
	for _, j := range positions {
		switch {
		case j < len(s.Scores):
			s.Scores[j] = src.Scores[j]
			s.Ops[j] = src.Ops[j]
		case j == len(s.Scores):
			s.Scores = append(s.Scores, src.Scores[j])
			s.Ops = append(s.Ops, src.Ops[j])
		default:
			panic(fmt.Sprintf("ecm: update of position %d past length %d", j, len(s.Scores)))
		}
	}
}

// PrevPositions maps every prefix position of this row to the position it
// was reached from in the preceding row.
func (s *ScoreInfo) PrevPositions() []int {
	out := make([]int, len(s.Ops))
	for j, op := range s.Ops {
		switch op {
		case editdistance.Hit, editdistance.Substitute:
			out[j] = j - 1
		case editdistance.Delete:
			out[j] = j
		case editdistance.Insert:
			tj := j
			for tj > 0 && s.Ops[tj] == editdistance.Insert {
				tj--
			}
			if op := s.Ops[tj]; op == editdistance.Hit || op == editdistance.Substitute {
				tj--
			}
			out[j] = tj
		default:
			out[j] = 0
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *ScoreInfo) Clone() *ScoreInfo {
	return &ScoreInfo{
		Scores: append([]float64(nil), s.Scores...),
		Ops:    append([]editdistance.Op(nil), s.Ops...),
	}
}
