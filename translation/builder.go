package translation

import (
	"fmt"
	"math"
	"slices"

	"github.com/happyhackingspace/imt/alignment"
	"github.com/happyhackingspace/imt/editdistance"
)

type builderWord struct {
	text        string
	confidence  float64
	unknown     bool
	uncorrected bool // typed prefix word accepted as the lattice proposed it
}

type builderPhrase struct {
	sourceRange alignment.Range
	targetCut   int
	alignment   *alignment.Matrix
}

// Builder accumulates the words and phrases of a correction before it is
// frozen into a Result. The zero value is ready to use.
type Builder struct {
	words   []builderWord
	phrases []builderPhrase
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Len returns the number of target words appended so far.
func (b *Builder) Len() int { return len(b.words) }

// Words returns a copy of the current target words.
func (b *Builder) Words() []string {
	out := make([]string, len(b.words))
	for i, w := range b.words {
		out[i] = w.text
	}
	return out
}

// Confidences returns a copy of the current word confidences.
func (b *Builder) Confidences() []float64 {
	out := make([]float64, len(b.words))
	for i, w := range b.words {
		out[i] = w.confidence
	}
	return out
}

// Reset drops all words and phrases.
func (b *Builder) Reset() {
	b.words = b.words[:0]
	b.phrases = b.phrases[:0]
}

// AppendWord adds a target word. A confidence of -1 means unknown.
func (b *Builder) AppendWord(word string, confidence float64, isUnknown bool) {
	b.words = append(b.words, builderWord{text: word, confidence: confidence, unknown: isUnknown})
}

// MarkPhrase closes a phrase over the words appended since the previous
// phrase. a must have one row per source word of r and one column per
// covered target word.
func (b *Builder) MarkPhrase(r alignment.Range, a *alignment.Matrix) {
	prevCut := 0
	if n := len(b.phrases); n > 0 {
		prevCut = b.phrases[n-1].targetCut
	}
	cut := len(b.words)
	if cut <= prevCut {
		panic(fmt.Sprintf("translation: phrase cut %d does not advance past %d", cut, prevCut))
	}
	if a.Rows() != r.Len() || a.Cols() != cut-prevCut {
		panic(fmt.Sprintf("translation: phrase alignment is %dx%d, want %dx%d", a.Rows(), a.Cols(), r.Len(), cut-prevCut))
	}
	b.phrases = append(b.phrases, builderPhrase{sourceRange: r, targetCut: cut, alignment: a})
}

// CorrectPrefix applies the word operations aligning the builder's words
// against the typed prefix. Inserted words get unknown confidence and an
// unaligned column, deleted words shrink their phrase (dropping it when it
// becomes empty), substituted words are replaced, and a hit on the
// incomplete last word is completed through charOps. It returns how many
// alignment columns are still pending for the phrase that follows.
func (b *Builder) CorrectPrefix(wordOps, charOps []editdistance.Op, prefix []string, isLastWordComplete bool) int {
	var cols []int
	i, j, k := 0, 0, 0
	for _, op := range wordOps {
		switch op {
		case editdistance.Insert:
			b.words = slices.Insert(b.words, j, builderWord{text: prefix[j], confidence: -1})
			cols = append(cols, -1)
			for l := k; l < len(b.phrases); l++ {
				b.phrases[l].targetCut++
			}
			j++
		case editdistance.Delete:
			b.words = slices.Delete(b.words, j, j+1)
			i++
			if k < len(b.phrases) {
				for l := k; l < len(b.phrases); l++ {
					b.phrases[l].targetCut--
				}
				if b.phrases[k].targetCut <= 0 || (k > 0 && b.phrases[k].targetCut == b.phrases[k-1].targetCut) {
					b.phrases = slices.Delete(b.phrases, k, k+1)
					cols = cols[:0]
					i = 0
				} else if j >= b.phrases[k].targetCut {
					b.resizeAlignment(k, cols)
					cols = cols[:0]
					i = 0
					k++
				}
			}
		case editdistance.Hit, editdistance.Substitute:
			w := &b.words[j]
			if op == editdistance.Substitute || j < len(prefix)-1 || isLastWordComplete {
				w.text = prefix[j]
			} else {
				w.text = correctWord(charOps, w.text, prefix[j])
			}
			if op == editdistance.Substitute {
				w.confidence = -1
			} else {
				w.uncorrected = true
			}
			cols = append(cols, i)
			i++
			j++
			if k < len(b.phrases) && j >= b.phrases[k].targetCut {
				b.resizeAlignment(k, cols)
				cols = cols[:0]
				i = 0
				k++
			}
		}
	}

	for j < len(b.words) && k < len(b.phrases) {
		cols = append(cols, i)
		i++
		j++
		if j >= b.phrases[k].targetCut {
			b.resizeAlignment(k, cols)
			cols = cols[:0]
			break
		}
	}
	return len(cols)
}

// resizeAlignment rebuilds phrase k's alignment from the listed old
// columns; -1 entries become unaligned columns.
func (b *Builder) resizeAlignment(k int, cols []int) {
	cur := b.phrases[k].alignment
	if len(cols) == cur.Cols() && isIdentity(cols) {
		return
	}
	next := alignment.NewMatrix(cur.Rows(), len(cols))
	for j, src := range cols {
		if src < 0 {
			continue
		}
		for i := 0; i < cur.Rows(); i++ {
			next.Set(i, j, cur.Get(i, src))
		}
	}
	b.phrases[k].alignment = next
}

func isIdentity(cols []int) bool {
	for j, c := range cols {
		if c != j {
			return false
		}
	}
	return true
}

// correctWord rewrites word so that it starts with the typed prefix,
// following the character operations of their alignment, and keeps the
// unmatched remainder of word.
func correctWord(charOps []editdistance.Op, word, prefix string) string {
	w, p := []rune(word), []rune(prefix)
	out := make([]rune, 0, len(w)+len(p))
	i, j := 0, 0
	for _, op := range charOps {
		switch op {
		case editdistance.Hit:
			out = append(out, w[i])
			i++
			j++
		case editdistance.Insert:
			out = append(out, p[j])
			j++
		case editdistance.Delete:
			i++
		case editdistance.Substitute:
			out = append(out, p[j])
			i++
			j++
		}
	}
	out = append(out, w[i:]...)
	return string(out)
}

// ToResult freezes the builder. The first prefixCount target words are
// attributed to the typed prefix. Words past the last phrase are folded into
// it as unaligned columns.
func (b *Builder) ToResult(source []string, prefixCount int) *Result {
	n := len(b.words)
	phrases := make([]builderPhrase, len(b.phrases))
	copy(phrases, b.phrases)
	lastCut := 0
	if len(phrases) > 0 {
		lastCut = phrases[len(phrases)-1].targetCut
	}
	if n > lastCut {
		if len(phrases) == 0 {
			phrases = append(phrases, builderPhrase{targetCut: n, alignment: alignment.NewMatrix(0, n)})
		} else {
			last := &phrases[len(phrases)-1]
			prevCut := 0
			if len(phrases) > 1 {
				prevCut = phrases[len(phrases)-2].targetCut
			}
			grown := alignment.NewMatrix(last.alignment.Rows(), n-prevCut)
			for i := 0; i < last.alignment.Rows(); i++ {
				for j := 0; j < last.alignment.Cols(); j++ {
					grown.Set(i, j, last.alignment.Get(i, j))
				}
			}
			last.alignment = grown
			last.targetCut = n
		}
	}

	r := &Result{
		source:      slices.Clone(source),
		target:      b.Words(),
		confidences: b.Confidences(),
		sources:     make([]Sources, n),
		alignment:   alignment.NewMatrix(len(source), n),
	}
	start := 0
	for _, ph := range phrases {
		confidence := math.MaxFloat64
		for j := start; j < ph.targetCut; j++ {
			for i := ph.sourceRange.Start; i < ph.sourceRange.End; i++ {
				if ph.alignment.Get(i-ph.sourceRange.Start, j-start) {
					r.alignment.Set(i, j, true)
				}
			}
			w := b.words[j]
			switch {
			case j < prefixCount:
				r.sources[j] = Prefix
				if w.uncorrected {
					r.sources[j] |= Smt
				}
			case w.unknown:
				r.sources[j] = None
			default:
				r.sources[j] = Smt
			}
			confidence = min(confidence, w.confidence)
		}
		r.phrases = append(r.phrases, Phrase{SourceRange: ph.sourceRange, TargetCut: ph.targetCut, Confidence: confidence})
		start = ph.targetCut
	}
	return r
}
