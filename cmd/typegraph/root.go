package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/typegraph/typegraph/codec"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

// Global flag values.
var (
	flagConfig  string
	flagVerbose bool
)

// logger is initialized by the root PersistentPreRunE and shared by all
// subcommands.
var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "typegraph",
	Short: "typegraph works with typed instance graphs",
	Long: `typegraph compiles entity schemas, validates instance populations
against them, and compares, merges and generates code from instance
graphs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .typegraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(genCmd)
}

// loadConfig reads the optional config file. Missing config is not an
// error; a named but unreadable one is.
func loadConfig() error {
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		viper.SetConfigName(".typegraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("TYPEGRAPH")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// The default config is optional; an explicitly named one is not.
		if flagConfig == "" {
			return nil
		}
		return fmt.Errorf("read config %s: %w", flagConfig, err)
	}
	return nil
}

func initLogger() error {
	var err error
	if flagVerbose || viper.GetBool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		logger, err = cfg.Build()
	}
	return err
}

// loadSchema compiles the schema file named by the argument or, when
// empty, by the config's schema key.
func loadSchema(path string) (*compiler.Graph, error) {
	if path == "" {
		path = viper.GetString("schema")
	}
	if path == "" {
		return nil, usage(fmt.Errorf("no schema file given"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := compiler.CompileYAML(f)
	if err != nil {
		return nil, usage(fmt.Errorf("compile %s: %w", path, err))
	}
	logger.Info("schema compiled", zap.String("file", path), zap.Int("types", len(g.Types)))
	return g, nil
}

// loadPopulation decodes one data file, choosing the codec by
// extension: .msgpack/.mp for MessagePack, anything else JSON.
func loadPopulation(g *compiler.Graph, path string) ([]*graph.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var insts []*graph.Instance
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		insts, err = codec.UnmarshalMsgpack(g, data)
	default:
		insts, err = codec.UnmarshalJSON(g, data)
	}
	if err != nil {
		return nil, usage(fmt.Errorf("decode %s: %w", path, err))
	}
	for _, i := range insts {
		if i.Provenance == nil {
			i.Provenance = &graph.Provenance{File: path}
		}
	}
	return insts, nil
}
