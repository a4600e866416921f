package corrector

// Config weighs the error model against the lattice scores.
type Config struct {
	EcmWeight       float64 `yaml:"ecm_weight" json:"ecm_weight"`
	WordGraphWeight float64 `yaml:"word_graph_weight" json:"word_graph_weight"`
	// ConfidenceThreshold prunes known arcs carrying a word below it. At or
	// below zero pruning is off and hypotheses complete greedily.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
}

// DefaultConfig returns equal weights and no pruning.
func DefaultConfig() Config {
	return Config{
		EcmWeight:           1,
		WordGraphWeight:     1,
		ConfidenceThreshold: 0,
	}
}
