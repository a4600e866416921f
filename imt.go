// Package imt suggests full translations that agree with what a translator
// has typed so far.
//
// A Translator carries the error model and the search settings. Each source
// sentence gets a Session over its word graph; the session is fed the
// growing prefix and recomputes the best completions incrementally.
//
//	tr, _ := imt.New(imt.DefaultConfig())
//	s, _ := tr.NewSession(source, graph, nil)
//	results := s.CorrectText("the bic")
//	fmt.Println(results[0].Target()) // [the bicycle is red]
package imt

import (
	"errors"
	"fmt"
	"slices"

	"github.com/happyhackingspace/imt/corrector"
	"github.com/happyhackingspace/imt/ecm"
	"github.com/happyhackingspace/imt/internal/textutil"
	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// ErrTransferSource is returned when a transfer result was produced for a
// different source sentence.
var ErrTransferSource = errors.New("transfer result source differs from sentence")

// Translator is safe for concurrent use; its sessions are not.
type Translator struct {
	model *ecm.Model
	cfg   Config
}

// New validates cfg and builds the error model.
func New(cfg Config) (*Translator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("imt: %w", err)
	}
	model, err := ecm.New(cfg.ECM)
	if err != nil {
		return nil, fmt.Errorf("imt: %w", err)
	}
	return &Translator{model: model, cfg: cfg}, nil
}

// Config returns the configuration with defaults applied.
func (t *Translator) Config() Config { return t.cfg }

// Session corrects one sentence.
type Session struct {
	cfg      Config
	cs       *corrector.Session
	transfer *translation.Result
}

// NewSession starts a session over graph. transfer, when not nil, is merged
// into every correction.
func (t *Translator) NewSession(source []string, graph *wordgraph.Graph, transfer *translation.Result) (*Session, error) {
	if transfer != nil && !slices.Equal(transfer.Source(), source) {
		return nil, fmt.Errorf("imt: %w", ErrTransferSource)
	}
	cs, err := corrector.NewSession(t.model, source, graph, t.cfg.corrector())
	if err != nil {
		return nil, fmt.Errorf("imt: %w", err)
	}
	return &Session{cfg: t.cfg, cs: cs, transfer: transfer}, nil
}

// Correct returns up to Config.NBest corrections starting with prefix.
func (s *Session) Correct(prefix []string, isLastWordComplete bool) []*translation.Result {
	return s.CorrectN(prefix, isLastWordComplete, s.cfg.NBest)
}

// CorrectN is Correct with an explicit result count.
func (s *Session) CorrectN(prefix []string, isLastWordComplete bool, n int) []*translation.Result {
	results := s.cs.Correct(prefix, isLastWordComplete, n)
	if s.transfer == nil {
		return results
	}
	for i, r := range results {
		results[i] = r.Merge(len(prefix), s.cfg.MergeThreshold, s.transfer)
	}
	return results
}

// CorrectText tokenizes typed text and corrects it. The last word is
// complete when text ends in whitespace or punctuation.
func (s *Session) CorrectText(text string) []*translation.Result {
	prefix, complete := textutil.SplitPrefix(text)
	return s.Correct(prefix, complete)
}

// Prefix returns the words of the last correction request.
func (s *Session) Prefix() []string { return s.cs.Prefix() }

// Reset forgets the typed prefix.
func (s *Session) Reset() { s.cs.Reset() }
