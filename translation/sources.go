package translation

import (
	"fmt"
	"strings"
)

// Sources records where a target word came from. Flags combine.
type Sources uint8

const (
	None     Sources = 0
	Smt      Sources = 1
	Transfer Sources = 2
	Prefix   Sources = 4
)

var sourceNames = []struct {
	flag Sources
	name string
}{
	{Smt, "smt"},
	{Transfer, "transfer"},
	{Prefix, "prefix"},
}

// Has reports whether every flag in f is set.
func (s Sources) Has(f Sources) bool { return s&f == f }

func (s Sources) String() string {
	if s == None {
		return "none"
	}
	var parts []string
	for _, n := range sourceNames {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := s &^ (Smt | Transfer | Prefix); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

func (s Sources) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Sources) UnmarshalText(text []byte) error {
	v, err := ParseSources(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSources parses the "smt|prefix" form produced by String.
func ParseSources(text string) (Sources, error) {
	if text == "" || text == "none" {
		return None, nil
	}
	var s Sources
	for _, part := range strings.Split(text, "|") {
		found := false
		for _, n := range sourceNames {
			if part == n.name {
				s |= n.flag
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("translation: unknown source %q", part)
		}
	}
	return s, nil
}
