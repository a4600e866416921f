package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/imt"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	configPath  string
	initialized bool
	rootCmd     *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:          "imt",
		Short:        "Interactive translation prediction over word graphs",
		Version:      c.version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initApp()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging and banner")
	c.rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "imt.yaml", "Path to YAML config file (defaults when missing)")

	defaultHelp := c.rootCmd.HelpFunc()
	c.rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		c.initApp()
		defaultHelp(cmd, args)
	})

	c.rootCmd.AddCommand(c.newCorrectCommand())
	c.rootCmd.AddCommand(c.newInteractiveCommand())
	c.rootCmd.AddCommand(c.newBatchCommand())
	c.rootCmd.AddCommand(c.newInspectCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// initApp initializes logging and prints the banner.
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.silent {
		level = slog.Level(100)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	if !c.silent {
		fmt.Fprint(os.Stderr, banner(c.version))
	}
}

// overrides are the config values a command lets flags replace.
type overrides struct {
	n         int
	threshold float64
	workers   int
}

func (o *overrides) register(cmd *cobra.Command, workers bool) {
	cmd.Flags().IntVarP(&o.n, "n", "n", 1, "Number of corrections to return")
	cmd.Flags().Float64Var(&o.threshold, "threshold", 0, "Word confidence below which arcs are pruned (0 disables pruning)")
	if workers {
		cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "Number of sentences corrected in parallel (default: CPU count)")
	}
}

// translator loads the config, applies the flags the user set and builds
// a Translator.
func (c *CLI) translator(cmd *cobra.Command, o *overrides) (*imt.Translator, error) {
	cfg, err := imt.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("n") {
		cfg.NBest = o.n
	}
	if flags.Changed("threshold") {
		cfg.ConfidenceThreshold = o.threshold
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	slog.Debug("Config loaded", "path", c.configPath, "n_best", cfg.NBest, "threshold", cfg.ConfidenceThreshold, "workers", cfg.Workers)
	return imt.New(cfg)
}
