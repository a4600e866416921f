package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/imt"
	"github.com/happyhackingspace/imt/internal/storage"
	"github.com/happyhackingspace/imt/internal/textutil"
)

// incompleteMarker at the end of a line keeps its last word open even
// when followed by nothing.
const incompleteMarker = "|"

func (c *CLI) newInteractiveCommand() *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "interactive <sentence.json>",
		Short: "Correct successive prefixes read line by line from stdin",
		Args:  cobra.ExactArgs(1),
		Long: `Reads one prefix per line and prints the best completion after each.
The session is kept between lines so only the edited part is recomputed.
A line ending in whitespace or punctuation completes its last word; end a
line with "|" to keep the last word open.`,
		Example: `  printf 'the\nthe |\nthe bic|\nthe bike \n' | imt interactive sentence.json
  imt interactive sentence.json -n 3 -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sent, err := storage.LoadSentence(args[0])
			if err != nil {
				return err
			}
			tr, err := c.translator(cmd, &o)
			if err != nil {
				return err
			}
			s, err := tr.NewSession(sent.Source, sent.Graph, sent.Transfer)
			if err != nil {
				return err
			}
			return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), s)
		},
	}

	o.register(cmd, false)
	return cmd
}

// parseLine turns an input line into prefix words and the completeness of
// the last one.
func parseLine(line string) ([]string, bool) {
	line = strings.TrimRight(line, "\r")
	if text, ok := strings.CutSuffix(line, incompleteMarker); ok {
		words, _ := textutil.SplitPrefix(text)
		return words, false
	}
	return textutil.SplitPrefix(line)
}

func runInteractive(r io.Reader, w io.Writer, s *imt.Session) error {
	dmp := diffmatchpatch.New()
	prev := ""
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		added, removed, at := describeEdit(dmp, prev, line)
		slog.Debug("Edit", "at", at, "added", added, "removed", removed)
		prev = line

		words, complete := parseLine(line)
		start := time.Now()
		results := s.Correct(words, complete)
		slog.Debug("Correction completed", "words", len(words), "complete", complete, "duration", time.Since(start))
		if len(results) == 0 {
			if _, err := fmt.Fprintln(w, "-"); err != nil {
				return err
			}
			continue
		}
		for _, res := range results {
			if _, err := fmt.Fprintln(w, textutil.Detokenize(res.Target())); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

// describeEdit summarizes the character edit turning oldText into newText:
// the inserted and deleted text and the offset of the first change in
// oldText, -1 when nothing changed.
func describeEdit(dmp *diffmatchpatch.DiffMatchPatch, oldText, newText string) (added, removed string, at int) {
	diffs := dmp.DiffMain(oldText, newText, false)
	at = -1
	pos := 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += len(d.Text)
		case diffmatchpatch.DiffInsert:
			if at == -1 {
				at = pos
			}
			added += d.Text
		case diffmatchpatch.DiffDelete:
			if at == -1 {
				at = pos
			}
			removed += d.Text
			pos += len(d.Text)
		}
	}
	return added, removed, at
}
