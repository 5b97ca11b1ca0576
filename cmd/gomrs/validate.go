package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/delph-in/gomrs/config"
	"github.com/delph-in/gomrs/corpus"
	"github.com/delph-in/gomrs/links"
	"github.com/delph-in/gomrs/mrs"
)

func validateCmd(cfg func() *config.Config) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check graphs for structural problems",
		Long: `Validate decodes the given files and derives dependency links from
each graph, reporting anything suspicious: unresolvable scope
constraints, scopes without a head, duplicate constraints.

Warnings are informational by default; --strict makes them fail the
run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := corpus.NewReader(nil, nil).Read(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			strictMode := strict || cfg().Strict
			var errCount, warnCount int
			for _, item := range items {
				if item.Err != nil {
					errCount++
					fmt.Fprintf(out, "%s: error: %v\n", item.Path, item.Err)
					continue
				}
				_, warnings := links.Derive(item.Graph)
				for _, w := range warnings {
					warnCount++
					fmt.Fprintf(out, "%s: %s: warning: %s\n", item.Path, graphLabel(item.Graph), w.Message)
				}
			}

			fmt.Fprintf(out, "%d graphs checked, %d errors, %d warnings\n", len(items), errCount, warnCount)
			if errCount > 0 {
				return fmt.Errorf("%d graphs failed to decode", errCount)
			}
			if strictMode && warnCount > 0 {
				return fmt.Errorf("%d warnings in strict mode", warnCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// graphLabel names a graph for diagnostics: its identifier when it has
// one, otherwise its first few predicates.
func graphLabel(g *mrs.Graph) string {
	if id := g.Identifier(); id != "" {
		return id
	}
	eps := g.EPs()
	var preds []string
	for i, ep := range eps {
		if i == 3 {
			preds = append(preds, "...")
			break
		}
		preds = append(preds, ep.Predicate.Canonical())
	}
	if len(preds) == 0 {
		return "(empty graph)"
	}
	return strings.Join(preds, " ")
}
