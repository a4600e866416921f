package storage

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Storage wraps a folder of sentence files.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// IterOptions controls sentence iteration behavior.
type IterOptions struct {
	DropDuplicates  bool
	DropEmptyGraphs bool
	Recursive       bool
}

// DefaultIterOptions returns the default options for iterating sentences.
func DefaultIterOptions() IterOptions {
	return IterOptions{
		DropDuplicates:  true,
		DropEmptyGraphs: false,
		Recursive:       false,
	}
}

// Paths lists the sentence files of the folder in lexical order.
func (s *Storage) Paths(recursive bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.Folder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Folder && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// IterSentences loads every sentence file of the folder. Unreadable or
// malformed files are logged and skipped. Files with identical content are
// returned once when opts.DropDuplicates is set.
func (s *Storage) IterSentences(opts IterOptions) ([]*Sentence, error) {
	paths, err := s.Paths(opts.Recursive)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var sentences []*Sentence
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Cannot read sentence file", "path", path, "error", err)
			continue
		}
		if opts.DropDuplicates {
			hash := fmt.Sprintf("%x", md5.Sum(data))
			if seen[hash] {
				slog.Debug("Duplicate sentence file", "path", path)
				continue
			}
			seen[hash] = true
		}
		sent, err := decodeSentence(data)
		if err != nil {
			slog.Warn("Cannot decode sentence file", "path", path, "error", err)
			continue
		}
		if opts.DropEmptyGraphs && sent.Graph.IsEmpty() {
			continue
		}
		sent.Path = path
		if sent.ID == "" {
			rel, err := filepath.Rel(s.Folder, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			sent.ID = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		}
		sentences = append(sentences, sent)
	}
	return sentences, nil
}
