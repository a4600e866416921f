package imt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/imt/corrector"
	"github.com/happyhackingspace/imt/ecm"
)

// Config holds the tunables of a Translator.
type Config struct {
	ECM                 ecm.Parameters `yaml:"ecm"`
	EcmWeight           float64        `yaml:"ecm_weight"`
	WordGraphWeight     float64        `yaml:"word_graph_weight"`
	ConfidenceThreshold float64        `yaml:"confidence_threshold"`
	// MergeThreshold is the confidence below which a word may be replaced by
	// the transfer result.
	MergeThreshold float64 `yaml:"merge_threshold"`
	NBest          int     `yaml:"n_best"`
	Workers        int     `yaml:"workers"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	cc := corrector.DefaultConfig()
	return Config{
		ECM:                 ecm.DefaultParameters(),
		EcmWeight:           cc.EcmWeight,
		WordGraphWeight:     cc.WordGraphWeight,
		ConfidenceThreshold: cc.ConfidenceThreshold,
		MergeThreshold:      0.5,
		NBest:               1,
		Workers:             runtime.NumCPU(),
	}
}

// ApplyDefaults fills the counts left at zero.
func (c *Config) ApplyDefaults() {
	if c.NBest <= 0 {
		c.NBest = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks the error model parameters and the weights.
func (c Config) Validate() error {
	if err := c.ECM.Validate(); err != nil {
		return err
	}
	if c.EcmWeight < 0 || c.WordGraphWeight < 0 {
		return fmt.Errorf("negative weight %v/%v", c.EcmWeight, c.WordGraphWeight)
	}
	return nil
}

func (c Config) corrector() corrector.Config {
	return corrector.Config{
		EcmWeight:           c.EcmWeight,
		WordGraphWeight:     c.WordGraphWeight,
		ConfidenceThreshold: c.ConfidenceThreshold,
	}
}

// LoadConfig reads a YAML config over the defaults. Keys absent from the
// file keep their default values; a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("imt: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("imt: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig writes cfg as YAML, replacing path atomically.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("imt: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("imt: %w", err)
	}
	f, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("imt: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("imt: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imt: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imt: %w", err)
	}
	return nil
}
