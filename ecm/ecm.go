// Package ecm implements the error correction model: a noisy-channel
// calibration of edit costs, and the per-lattice-node score vectors that are
// extended as the user types.
package ecm

import (
	"errors"
	"fmt"
	"math"

	"github.com/happyhackingspace/imt/editdistance"
	"github.com/happyhackingspace/imt/translation"
)

// Parameters calibrate the edit costs.
type Parameters struct {
	VocabularySize     int     `yaml:"vocabulary_size" json:"vocabulary_size"`
	HitProbability     float64 `yaml:"hit_probability" json:"hit_probability"`
	InsertionFactor    float64 `yaml:"insertion_factor" json:"insertion_factor"`
	SubstitutionFactor float64 `yaml:"substitution_factor" json:"substitution_factor"`
	DeletionFactor     float64 `yaml:"deletion_factor" json:"deletion_factor"`
}

// DefaultParameters returns the stock calibration.
func DefaultParameters() Parameters {
	return Parameters{
		VocabularySize:     128,
		HitProbability:     0.8,
		InsertionFactor:    1,
		SubstitutionFactor: 1,
		DeletionFactor:     1,
	}
}

// ErrInvalidParameters is wrapped by Validate errors.
var ErrInvalidParameters = errors.New("invalid ecm parameters")

// Validate checks that the parameters define finite positive costs.
func (p Parameters) Validate() error {
	switch {
	case p.HitProbability <= 0 || p.HitProbability >= 1:
		return fmt.Errorf("ecm: hit probability %v not in (0, 1): %w", p.HitProbability, ErrInvalidParameters)
	case p.VocabularySize < 0:
		return fmt.Errorf("ecm: negative vocabulary size %d: %w", p.VocabularySize, ErrInvalidParameters)
	case p.InsertionFactor <= 0 || p.SubstitutionFactor <= 0 || p.DeletionFactor <= 0:
		return fmt.Errorf("ecm: factors must be positive: %w", ErrInvalidParameters)
	}
	return nil
}

// Costs derives the per-character costs. Each event has probability
// e*factor, where e spreads the non-hit mass over the vocabulary.
func (p Parameters) Costs() editdistance.CharCosts {
	v := float64(p.VocabularySize)
	var e float64
	if p.VocabularySize > 0 {
		e = (1 - p.HitProbability) / (p.InsertionFactor*v + p.SubstitutionFactor*(v-1) + p.DeletionFactor)
	} else {
		e = (1 - p.HitProbability) / (p.InsertionFactor + p.SubstitutionFactor + p.DeletionFactor)
	}
	return editdistance.CharCosts{
		Hit:          -math.Log(p.HitProbability),
		Insertion:    -math.Log(e * p.InsertionFactor),
		Substitution: -math.Log(e * p.SubstitutionFactor),
		Deletion:     -math.Log(e * p.DeletionFactor),
	}
}

// Model applies the calibrated costs to word-level alignments.
type Model struct {
	params Parameters
	costs  editdistance.SegmentCosts
}

// New validates p and returns a model.
func New(p Parameters) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Model{params: p, costs: editdistance.SegmentCosts{Chars: p.Costs()}}, nil
}

func (m *Model) Parameters() Parameters { return m.params }

func (m *Model) Costs() editdistance.SegmentCosts { return m.costs }

// SetupInitial resets esi to the empty-prefix score of the initial state.
func (m *Model) SetupInitial(esi *ScoreInfo) {
	esi.Scores = append(esi.Scores[:0], 0)
	esi.Ops = append(esi.Ops[:0], editdistance.None)
}

// Setup resets esi as the row of a lattice word following prev: the empty
// prefix can only be reached by deleting the word.
func (m *Model) Setup(esi, prev *ScoreInfo, word string) {
	esi.Scores = append(esi.Scores[:0], prev.Scores[0]+m.costs.DeletionCost(word))
	esi.Ops = append(esi.Ops[:0], editdistance.None)
}

// ExtendInitial appends the initial-state scores of the newly typed words.
func (m *Model) ExtendInitial(esi *ScoreInfo, yIncr []string) {
	var ops []editdistance.Op
	esi.Scores, ops = editdistance.ExtendFirstRow(m.costs, esi.Scores, yIncr)
	esi.Ops = append(esi.Ops, ops...)
}

// Extend appends the scores of word's row for the newly typed words; prev
// must already cover the full prefix.
func (m *Model) Extend(esi, prev *ScoreInfo, word string, yIncr []string, isLastWordComplete bool) {
	var ops []editdistance.Op
	esi.Scores, ops = editdistance.ExtendRow(m.costs, esi.Scores, prev.Scores, word, yIncr, isLastWordComplete)
	esi.Ops = append(esi.Ops, ops...)
}

// CorrectPrefix reconciles the first uncorrectedLen words of b with the
// typed prefix and returns how many alignment columns the next phrase must
// prepend.
func (m *Model) CorrectPrefix(b *translation.Builder, uncorrectedLen int, prefix []string, isLastWordComplete bool) int {
	if uncorrectedLen == 0 {
		for _, w := range prefix {
			b.AppendWord(w, -1, false)
		}
		return len(prefix)
	}
	_, wordOps, charOps := m.costs.ComputePrefix(b.Words()[:uncorrectedLen], prefix, isLastWordComplete, false)
	return b.CorrectPrefix(wordOps, charOps, prefix, isLastWordComplete)
}
