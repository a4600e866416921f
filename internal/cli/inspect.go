package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/imt/internal/storage"
	"github.com/happyhackingspace/imt/wordgraph"
)

func (c *CLI) newInspectCommand() *cobra.Command {
	var arcs bool

	cmd := &cobra.Command{
		Use:   "inspect <sentence.json>",
		Short: "Summarize a sentence's word graph",
		Args:  cobra.ExactArgs(1),
		Example: `  imt inspect sentence.json
  imt inspect sentence.json --arcs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sent, err := storage.LoadSentence(args[0])
			if err != nil {
				return err
			}
			return printGraph(cmd.OutOrStdout(), sent, arcs)
		},
	}

	cmd.Flags().BoolVar(&arcs, "arcs", false, "List every arc")
	return cmd
}

func printGraph(w io.Writer, sent *storage.Sentence, arcs bool) error {
	g := sent.Graph
	var b strings.Builder
	fmt.Fprintf(&b, "Sentence:     %s\n", sent.ID)
	fmt.Fprintf(&b, "Source:       %s\n", strings.Join(sent.Source, " "))
	fmt.Fprintf(&b, "States:       %d\n", g.StateCount())
	fmt.Fprintf(&b, "Arcs:         %d\n", g.ArcCount())
	fmt.Fprintf(&b, "Final states: %v\n", g.FinalStates())
	if g.IsEmpty() {
		b.WriteString("Graph is empty.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	rest := g.RestScores()
	fmt.Fprintf(&b, "Rest score:   %.4f\n", rest[0])
	fmt.Fprintf(&b, "Best path:    %s\n", pathWords(g, g.BestPathFromState(0)))
	if states := unreachableStates(g); len(states) > 0 {
		fmt.Fprintf(&b, "Unreachable:  %v\n", states)
	}
	if states := deadEnds(g); len(states) > 0 {
		fmt.Fprintf(&b, "Dead ends:    %v\n", states)
	}
	if arcs {
		b.WriteString("\n")
		for k, a := range g.Arcs() {
			unknown := ""
			if a.IsUnknown {
				unknown = " (unknown)"
			}
			fmt.Fprintf(&b, "%4d  %d -> %d  %8.4f  %v  %q%s\n",
				k, a.PrevState, a.NextState, a.Score, a.SourceRange, strings.Join(a.Words, " "), unknown)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// unreachableStates lists the states other than the initial one that no
// arc enters.
func unreachableStates(g *wordgraph.Graph) []int {
	var states []int
	for st := 1; st < g.StateCount(); st++ {
		if len(g.PrevArcs(st)) == 0 {
			states = append(states, st)
		}
	}
	return states
}

// deadEnds lists the non-final states no arc leaves.
func deadEnds(g *wordgraph.Graph) []int {
	var states []int
	for st := 0; st < g.StateCount(); st++ {
		if !g.IsFinal(st) && len(g.NextArcs(st)) == 0 {
			states = append(states, st)
		}
	}
	return states
}

func pathWords(g *wordgraph.Graph, path []int) string {
	var words []string
	for _, k := range path {
		words = append(words, g.Arc(k).Words...)
	}
	return strings.Join(words, " ")
}
