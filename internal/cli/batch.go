package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/imt"
	"github.com/happyhackingspace/imt/internal/storage"
)

func (c *CLI) newBatchCommand() *cobra.Command {
	var o overrides
	var recursive, keepDuplicates bool

	cmd := &cobra.Command{
		Use:   "batch <folder>",
		Short: "Correct every sentence file of a folder, one JSON line each",
		Args:  cobra.ExactArgs(1),
		Example: `  imt batch sentences/ -w 8 > corrections.jsonl
  imt batch sentences/ --recursive -n 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.DefaultIterOptions()
			opts.Recursive = recursive
			opts.DropDuplicates = !keepDuplicates
			sentences, err := storage.NewStorage(args[0]).IterSentences(opts)
			if err != nil {
				return err
			}
			tr, err := c.translator(cmd, &o)
			if err != nil {
				return err
			}

			jobs := make([]imt.Job, len(sentences))
			for i, s := range sentences {
				jobs[i] = imt.Job{ID: s.ID, Source: s.Source, Graph: s.Graph, Transfer: s.Transfer, Prefix: s.Prefix}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			outcomes, err := tr.CorrectAll(ctx, jobs)
			if err != nil {
				return err
			}

			failed := 0
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, out := range outcomes {
				if out.Err != nil {
					failed++
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			slog.Info("Batch written", "sentences", len(outcomes), "failed", failed)
			return nil
		},
	}

	o.register(cmd, true)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include sentence files of subfolders")
	cmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false, "Correct files with identical content more than once")
	return cmd
}
