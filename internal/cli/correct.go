package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/imt/internal/storage"
	"github.com/happyhackingspace/imt/internal/textutil"
	"github.com/happyhackingspace/imt/translation"
)

func (c *CLI) newCorrectCommand() *cobra.Command {
	var o overrides
	var prefix string
	var giza, asJSON bool

	cmd := &cobra.Command{
		Use:   "correct <sentence.json>",
		Short: "Complete a typed prefix from a sentence's word graph",
		Args:  cobra.ExactArgs(1),
		Example: `  # Best completion of the prefix stored in the file
  imt correct sentence.json

  # Complete a prefix whose last word is still being typed
  imt correct sentence.json --prefix "the bic"

  # Read the prefix from stdin
  echo "the bike " | imt correct sentence.json

  # Three best completions with their word alignments
  imt correct sentence.json --prefix "the " -n 3 --giza

  # JSON output
  imt correct sentence.json --json -s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sent, err := storage.LoadSentence(args[0])
			if err != nil {
				return err
			}
			text := sent.Prefix
			switch {
			case cmd.Flags().Changed("prefix"):
				text = prefix
			case !isTerminal(cmd.InOrStdin()):
				text, err = readPrefix(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			tr, err := c.translator(cmd, &o)
			if err != nil {
				return err
			}
			s, err := tr.NewSession(sent.Source, sent.Graph, sent.Transfer)
			if err != nil {
				return err
			}

			start := time.Now()
			results := s.CorrectText(text)
			slog.Debug("Correction completed", "id", sent.ID, "prefix", text, "results", len(results), "duration", time.Since(start))
			return printResults(cmd.OutOrStdout(), results, giza, asJSON)
		},
	}

	o.register(cmd, false)
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Typed prefix (default: the sentence file's prefix)")
	cmd.Flags().BoolVar(&giza, "giza", false, "Print word alignments in GIZA format")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

// isTerminal reports whether r is a character device. Readers that are not
// files count as piped input.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// readPrefix reads a prefix from r as a single line. The final newline is
// dropped and inner line breaks and whitespace runs collapse to one space;
// a trailing space survives to mark the last word as complete.
func readPrefix(r io.Reader) (string, error) {
	slog.Debug("Reading prefix from stdin")
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(body), "\n")
	text = strings.TrimSuffix(text, "\r")
	return textutil.NormalizeWhitespaces(text), nil
}

func printResults(w io.Writer, results []*translation.Result, giza, asJSON bool) error {
	if asJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No corrections found.")
		return err
	}
	for i, r := range results {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, textutil.Detokenize(r.Target())); err != nil {
			return err
		}
		if giza {
			if _, err := fmt.Fprint(w, r.Giza()); err != nil {
				return err
			}
		}
	}
	return nil
}
