package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/typegraph/typegraph/compiler/gen"
)

var flagTarget string

var genCmd = &cobra.Command{
	Use:   "gen <schema.yaml>",
	Short: "Generate Go name-constant packages from a schema",
	Long: `Gen compiles the schema and writes one Go package per entity type
under --target, each holding the type's attribute and relationship name
constants.

Example:
  typegraph gen schema.yaml --target ./internal/schema`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringVar(&flagTarget, "target", "", "directory to generate into")
}

func runGen(cmd *cobra.Command, args []string) error {
	g, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	target := flagTarget
	if target == "" {
		target = viper.GetString("gen.target")
	}
	if err := gen.Generate(g, gen.Config{Target: target}); err != nil {
		return err
	}
	logger.Info("generated", zap.String("target", target), zap.Int("types", len(g.Types)))
	return nil
}
