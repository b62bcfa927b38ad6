package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/typegraph/typegraph/codec"
	"github.com/typegraph/typegraph/graph"
)

var flagOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <schema.yaml> <into-file> <from-file>",
	Short: "Merge two instance graphs describing overlapping objects",
	Long: `Merge decodes both files, merges the second graph into the first
(matching instances by their unique attribute values), validates the
result and writes it as JSON to --output or stdout.

Literal attributes of matched instances must agree within their kind's
tolerance; a one-to-one slot that would be overwritten with a different
partner is a conflict and aborts the merge.

Example:
  typegraph merge schema.yaml base.json update.json -o merged.json`,
	Args: cobra.ExactArgs(3),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	g, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	dst, err := loadRoot(g, args[1])
	if err != nil {
		return err
	}
	src, err := loadRoot(g, args[2])
	if err != nil {
		return err
	}
	if err := graph.Merge(dst, src); err != nil {
		return usage(fmt.Errorf("merge: %w", err))
	}
	merged := graph.Reachable(dst)
	if err := graph.Validate(merged...); err != nil {
		return usage(fmt.Errorf("merged graph invalid:\n%w", err))
	}
	logger.Info("merged", zap.Int("instances", len(merged)))

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return codec.EncodeJSON(out, merged)
}
