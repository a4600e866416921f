package editdistance

import (
	"strings"
	"unicode/utf8"
)

// SegmentCosts prices edits between words. Costs scale with the character
// length of the words involved; substitutions are priced by a nested
// character-level alignment.
type SegmentCosts struct {
	Chars CharCosts
}

// NewSegmentCosts returns word-level costs built on the given per-character
// costs.
func NewSegmentCosts(hit, insertion, substitution, deletion float64) SegmentCosts {
	return SegmentCosts{Chars: CharCosts{
		Hit:          hit,
		Insertion:    insertion,
		Substitution: substitution,
		Deletion:     deletion,
	}}
}

func (c SegmentCosts) HitCost(_, y string, _ bool) float64 {
	return c.Chars.Hit * float64(utf8.RuneCountInString(y))
}

func (c SegmentCosts) SubstitutionCost(x, y string, isComplete bool) float64 {
	if x == "" {
		return c.InsertionCost(y)
	}
	if y == "" {
		return c.DeletionCost(x)
	}
	_, ops := c.Chars.ComputePrefix(x, y, isComplete, !isComplete)
	return c.Chars.weigh(ops)
}

func (c SegmentCosts) DeletionCost(x string) float64 {
	return c.Chars.Deletion * float64(max(utf8.RuneCountInString(x), 1))
}

func (c SegmentCosts) InsertionCost(y string) float64 {
	return c.Chars.Insertion * float64(max(utf8.RuneCountInString(y), 1))
}

// IsHit reports exact equality, or for a word still being typed, that the
// reference word starts with it.
func (c SegmentCosts) IsHit(x, y string, isComplete bool) bool {
	return x == y || (!isComplete && strings.HasPrefix(x, y))
}

// Compute returns the word-level distance between x and y.
func (c SegmentCosts) Compute(x, y []string) float64 {
	dist, _ := Compute(c, x, y, true, false)
	return dist
}

// ComputePrefix aligns reference words x against typed prefix y. Besides the
// word operations it returns the character operations of the alignment of
// the last typed word, when that word is matched by a hit or a substitution.
func (c SegmentCosts) ComputePrefix(x, y []string, isLastItemComplete, usePrefixDelOp bool) (dist float64, wordOps, charOps []Op) {
	dist, m := Compute(c, x, y, isLastItemComplete, usePrefixDelOp)
	wordOps = Operations(c, x, y, m, isLastItemComplete, usePrefixDelOp)

	i, j := 0, 0
	for _, op := range wordOps {
		switch op {
		case Hit, Substitute:
			if j == len(y)-1 {
				_, charOps = c.Chars.ComputePrefix(x[i], y[j], isLastItemComplete, !isLastItemComplete)
			}
			i++
			j++
		case Insert:
			j++
		case Delete:
			i++
		}
	}
	return dist, wordOps, charOps
}
