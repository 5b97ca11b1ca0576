package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delph-in/gomrs/compare"
	"github.com/delph-in/gomrs/config"
	"github.com/delph-in/gomrs/corpus"
)

func compareCmd(cfg func() *config.Config) *cobra.Command {
	var (
		countOnly    bool
		noProperties bool
		stepLimit    int
	)

	cmd := &cobra.Command{
		Use:   "compare TEST GOLD",
		Short: "Compare a test corpus against a gold corpus",
		Long: `Compare partitions the graphs of TEST and GOLD (files or glob
patterns) into test-only, shared, and gold-only bags. Two graphs are
shared when they are structurally identical up to variable renaming.

The exit status is 0 when every graph is shared, 1 otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := corpus.NewReader(nil, nil)
			testItems, err := reader.Read([]string{args[0]})
			if err != nil {
				return err
			}
			goldItems, err := reader.Read([]string{args[1]})
			if err != nil {
				return err
			}

			opts := &compare.Options{
				Properties: cfg().Compare.PropertiesEnabled() && !noProperties,
				StepLimit:  cfg().Compare.StepLimit,
			}
			if cmd.Flags().Changed("step-limit") {
				opts.StepLimit = stepLimit
			}

			res, err := compare.CompareBags(corpus.Graphs(testItems), corpus.Graphs(goldItems), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			testOnly, shared, goldOnly := res.Counts()
			if countOnly {
				fmt.Fprintf(out, "%d\t%d\t%d\n", testOnly, shared, goldOnly)
			} else {
				fmt.Fprintf(out, "test-only: %d\nshared:    %d\ngold-only: %d\n", testOnly, shared, goldOnly)
				for _, g := range res.TestOnly {
					fmt.Fprintf(out, "  < %s\n", graphLabel(g))
				}
				for _, g := range res.GoldOnly {
					fmt.Fprintf(out, "  > %s\n", graphLabel(g))
				}
			}

			for _, item := range append(corpus.Errors(testItems), corpus.Errors(goldItems)...) {
				fmt.Fprintf(out, "  ! %s: %v\n", item.Path, item.Err)
			}

			if testOnly > 0 || goldOnly > 0 {
				return fmt.Errorf("%d graphs unmatched", testOnly+goldOnly)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "Print only the tab-separated partition counts")
	cmd.Flags().BoolVar(&noProperties, "no-properties", false, "Ignore variable properties during comparison")
	cmd.Flags().IntVar(&stepLimit, "step-limit", 0, "Bound the comparison search (0 = unlimited)")

	return cmd
}
