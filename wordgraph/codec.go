package wordgraph

import (
	"encoding/json"
	"fmt"
	"os"
)

type graphJSON struct {
	InitialStateScore float64 `json:"initial_state_score"`
	FinalStates       []int   `json:"final_states"`
	Arcs              []Arc   `json:"arcs"`
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	raw := graphJSON{
		InitialStateScore: g.initialStateScore,
		FinalStates:       g.FinalStates(),
		Arcs:              g.arcs,
	}
	if raw.FinalStates == nil {
		raw.FinalStates = []int{}
	}
	if raw.Arcs == nil {
		raw.Arcs = []Arc{}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes and validates a graph.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec, err := New(raw.Arcs, raw.FinalStates, raw.InitialStateScore)
	if err != nil {
		return err
	}
	g.arcs = dec.arcs
	g.finalStates = dec.finalStates
	g.isFinal = dec.isFinal
	g.initialStateScore = dec.initialStateScore
	g.stateCount = dec.stateCount
	g.next = dec.next
	g.prev = dec.prev
	return nil
}

// Save serializes the graph to JSON.
func Save(g *Graph, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load deserializes and validates a graph from JSON.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Marshal serializes the graph to JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	return json.Marshal(g)
}

// Unmarshal deserializes and validates a graph from JSON bytes.
func Unmarshal(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
