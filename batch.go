package imt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/imt/internal/textutil"
	"github.com/happyhackingspace/imt/translation"
	"github.com/happyhackingspace/imt/wordgraph"
)

// Job is one sentence of a batch, with the text typed for it.
type Job struct {
	ID       string
	Source   []string
	Graph    *wordgraph.Graph
	Transfer *translation.Result
	Prefix   string
}

// Outcome is the correction of one Job. Err is set when the sentence could
// not be corrected; the other outcomes of the batch are unaffected.
type Outcome struct {
	ID      string                `json:"id"`
	Prefix  []string              `json:"prefix"`
	Results []*translation.Result `json:"results"`
	Err     error                 `json:"-"`
	Error   string                `json:"error,omitempty"`
}

// CorrectAll corrects the jobs over Config.Workers goroutines, each on its
// own session. Outcomes are in job order. Cancelling ctx stops the jobs not
// yet started and CorrectAll returns the context error.
func (t *Translator) CorrectAll(ctx context.Context, jobs []Job) ([]Outcome, error) {
	runID := uuid.NewString()
	start := time.Now()
	slog.Info("Batch started", "run", runID, "sentences", len(jobs), "workers", t.cfg.Workers)

	out := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Workers)
	for i := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = t.correctJob(&jobs[i])
			if out[i].Err != nil {
				slog.Warn("Sentence failed", "run", runID, "id", jobs[i].ID, "error", out[i].Err)
			} else {
				slog.Debug("Sentence corrected", "run", runID, "id", jobs[i].ID, "results", len(out[i].Results))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("imt: batch %s: %w", runID, err)
	}
	slog.Info("Batch finished", "run", runID, "duration", time.Since(start))
	return out, nil
}

func (t *Translator) correctJob(j *Job) Outcome {
	prefix, complete := textutil.SplitPrefix(j.Prefix)
	o := Outcome{ID: j.ID, Prefix: prefix}
	s, err := t.NewSession(j.Source, j.Graph, j.Transfer)
	if err != nil {
		o.Err = err
		o.Error = err.Error()
		o.Results = []*translation.Result{}
		return o
	}
	o.Results = s.Correct(prefix, complete)
	return o
}
