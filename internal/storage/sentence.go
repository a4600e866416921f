// Package storage reads and writes sentence files: a source sentence, its
// word graph, and optionally a typed prefix and a transfer result to merge.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// Sentence is the content of one sentence file.
type Sentence struct {
	ID       string              `json:"id"`
	Source   []string            `json:"source"`
	Prefix   string              `json:"prefix,omitempty"`
	Graph    *wordgraph.Graph    `json:"graph"`
	Transfer *translation.Result `json:"transfer,omitempty"`

	// Path is the file the sentence was loaded from.
	Path string `json:"-"`
}

// LoadSentence reads a sentence file. A file without an id takes its base
// name as the id.
func LoadSentence(path string) (*Sentence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	s, err := decodeSentence(data)
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", path, err)
	}
	s.Path = path
	if s.ID == "" {
		base := filepath.Base(path)
		s.ID = base[:len(base)-len(filepath.Ext(base))]
	}
	return s, nil
}

func decodeSentence(data []byte) (*Sentence, error) {
	var s Sentence
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Graph == nil {
		return nil, fmt.Errorf("missing graph")
	}
	if n := s.Graph.SourceLen(); n > len(s.Source) {
		return nil, fmt.Errorf("graph covers %d source words, sentence has %d", n, len(s.Source))
	}
	return &s, nil
}

// SaveSentence writes s as indented JSON.
func SaveSentence(path string, s *Sentence) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
