// Package translation holds translation results and the builder that
// assembles them from lattice arcs and a typed prefix.
package translation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/happyhackingspace/imt/alignment"
)

// Phrase is a contiguous span of target words ending before TargetCut,
// produced from SourceRange.
type Phrase struct {
	SourceRange alignment.Range `json:"source_range"`
	TargetCut   int             `json:"target_cut"`
	Confidence  float64         `json:"confidence"`
}

// Result is an immutable translation with per-word confidences, sources and
// a full word alignment.
type Result struct {
	source      []string
	target      []string
	confidences []float64
	sources     []Sources
	alignment   *alignment.Matrix
	phrases     []Phrase
}

// ErrInvalidResult is returned when result parts disagree in shape.
var ErrInvalidResult = errors.New("invalid result")

// NewResult validates and copies the parts of a result.
func NewResult(source, target []string, confidences []float64, sources []Sources, a *alignment.Matrix, phrases []Phrase) (*Result, error) {
	if len(confidences) != len(target) || len(sources) != len(target) {
		return nil, fmt.Errorf("translation: %d target words, %d confidences, %d sources: %w",
			len(target), len(confidences), len(sources), ErrInvalidResult)
	}
	if a == nil {
		a = alignment.NewMatrix(len(source), len(target))
	}
	if a.Rows() != len(source) || a.Cols() != len(target) {
		return nil, fmt.Errorf("translation: alignment is %dx%d, want %dx%d: %w",
			a.Rows(), a.Cols(), len(source), len(target), ErrInvalidResult)
	}
	prev := 0
	for k, ph := range phrases {
		if ph.TargetCut <= prev || ph.TargetCut > len(target) {
			return nil, fmt.Errorf("translation: phrase %d cut %d out of order: %w", k, ph.TargetCut, ErrInvalidResult)
		}
		if ph.SourceRange.Start < 0 || ph.SourceRange.End > len(source) || ph.SourceRange.Len() < 0 {
			return nil, fmt.Errorf("translation: phrase %d source range %v: %w", k, ph.SourceRange, ErrInvalidResult)
		}
		prev = ph.TargetCut
	}
	return &Result{
		source:      slices.Clone(source),
		target:      slices.Clone(target),
		confidences: slices.Clone(confidences),
		sources:     slices.Clone(sources),
		alignment:   a.Clone(),
		phrases:     slices.Clone(phrases),
	}, nil
}

func (r *Result) Source() []string             { return slices.Clone(r.source) }
func (r *Result) Target() []string             { return slices.Clone(r.target) }
func (r *Result) Confidences() []float64       { return slices.Clone(r.confidences) }
func (r *Result) WordSources() []Sources       { return slices.Clone(r.sources) }
func (r *Result) Alignment() *alignment.Matrix { return r.alignment.Clone() }
func (r *Result) Phrases() []Phrase            { return slices.Clone(r.phrases) }

// Len returns the number of target words.
func (r *Result) Len() int { return len(r.target) }

// Giza renders the alignment of the result in GIZA++ format.
func (r *Result) Giza() string {
	return r.alignment.Giza(r.source, r.target)
}

// Merge combines r with a secondary result over the same source. Target
// words inside the typed prefix or at or above threshold are kept, picking
// up the sources of any agreeing word of other aligned to the same source
// words. Other low-confidence aligned words are replaced by the translated
// words other aligns to the same source words, when there are any.
// Neither operand is modified.
func (r *Result) Merge(prefixCount int, threshold float64, other *Result) *Result {
	var (
		target      []string
		confidences []float64
		sources     []Sources
		links       [][2]int
	)
	// ends[j] is the merged length after processing target word j.
	ends := make([]int, len(r.target))
	// emitted maps a word of other already substituted to its merged position.
	emitted := make(map[int]int)
	otherRow := func(i int) []int {
		if i >= other.alignment.Rows() {
			return nil
		}
		return other.alignment.RowAlignedIndices(i)
	}

	for j, word := range r.target {
		srcIdx := r.alignment.ColumnAlignedIndices(j)
		switch {
		case len(srcIdx) == 0:
			target = append(target, word)
			confidences = append(confidences, r.confidences[j])
			sources = append(sources, r.sources[j])

		case j < prefixCount || r.confidences[j] >= threshold:
			target = append(target, word)
			confidences = append(confidences, r.confidences[j])
			s := r.sources[j]
			for _, i := range srcIdx {
				for _, jo := range otherRow(i) {
					if other.sources[jo] != None && other.target[jo] == word {
						s |= other.sources[jo]
					}
				}
				links = append(links, [2]int{i, len(target) - 1})
			}
			sources = append(sources, s)

		default:
			replaced := false
			for _, i := range srcIdx {
				for _, jo := range otherRow(i) {
					if other.sources[jo] == None {
						continue
					}
					pos, ok := emitted[jo]
					if !ok {
						target = append(target, other.target[jo])
						confidences = append(confidences, other.confidences[jo])
						sources = append(sources, other.sources[jo])
						pos = len(target) - 1
						emitted[jo] = pos
					}
					links = append(links, [2]int{i, pos})
					replaced = true
				}
			}
			if !replaced {
				target = append(target, word)
				confidences = append(confidences, r.confidences[j])
				sources = append(sources, r.sources[j])
				for _, i := range srcIdx {
					links = append(links, [2]int{i, len(target) - 1})
				}
			}
		}
		ends[j] = len(target)
	}

	a := alignment.NewMatrix(len(r.source), len(target))
	for _, l := range links {
		a.Set(l[0], l[1], true)
	}

	phrases := make([]Phrase, 0, len(r.phrases))
	start := 0
	for _, ph := range r.phrases {
		cut := ends[ph.TargetCut-1]
		if cut == start {
			// every word of the phrase was substituted by words already
			// placed in the previous one
			if n := len(phrases); n > 0 {
				prev := &phrases[n-1]
				prev.SourceRange.Start = min(prev.SourceRange.Start, ph.SourceRange.Start)
				prev.SourceRange.End = max(prev.SourceRange.End, ph.SourceRange.End)
			}
			continue
		}
		confidence := math.MaxFloat64
		for j := start; j < cut; j++ {
			confidence = min(confidence, confidences[j])
		}
		phrases = append(phrases, Phrase{SourceRange: ph.SourceRange, TargetCut: cut, Confidence: confidence})
		start = cut
	}

	return &Result{
		source:      slices.Clone(r.source),
		target:      target,
		confidences: confidences,
		sources:     sources,
		alignment:   a,
		phrases:     phrases,
	}
}

type resultJSON struct {
	Source      []string          `json:"source"`
	Target      []string          `json:"target"`
	Confidences []float64         `json:"confidences"`
	Sources     []Sources         `json:"sources"`
	Alignment   *alignment.Matrix `json:"alignment"`
	Phrases     []Phrase          `json:"phrases"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Source:      nonNil(r.source),
		Target:      nonNil(r.target),
		Confidences: nonNil(r.confidences),
		Sources:     nonNil(r.sources),
		Alignment:   r.alignment,
		Phrases:     nonNil(r.phrases),
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec, err := NewResult(raw.Source, raw.Target, raw.Confidences, raw.Sources, raw.Alignment, raw.Phrases)
	if err != nil {
		return err
	}
	*r = *dec
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
