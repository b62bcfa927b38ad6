package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

var flagWatch bool

var validateCmd = &cobra.Command{
	Use:   "validate <schema.yaml> [data-file...]",
	Short: "Compile a schema and validate instance populations against it",
	Long: `Validate compiles the schema file and, when data files are given,
decodes each one and validates its instance population: attribute
constraints, relationship cardinalities, and unique / unique_together
constraints across each file.

Data files are validated concurrently. With --watch, validation re-runs
whenever the schema or a data file changes.

Example:
  typegraph validate schema.yaml
  typegraph validate schema.yaml plants.json layouts.json
  typegraph validate --watch schema.yaml plants.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-validate on file changes")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if !flagWatch {
		return validateOnce(args[0], args[1:])
	}
	return watchValidate(cmd.Context(), args[0], args[1:])
}

func validateOnce(schemaPath string, dataPaths []string) error {
	g, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}
	var eg errgroup.Group
	for _, path := range dataPaths {
		eg.Go(func() error {
			return validateFile(g, path)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	logger.Info("validation passed",
		zap.String("schema", schemaPath), zap.Int("files", len(dataPaths)))
	return nil
}

func validateFile(g *compiler.Graph, path string) error {
	insts, err := loadPopulation(g, path)
	if err != nil {
		return err
	}
	if err := graph.Validate(insts...); err != nil {
		return usage(fmt.Errorf("%s:\n%w", path, err))
	}
	logger.Info("file valid", zap.String("file", path), zap.Int("instances", len(insts)))
	return nil
}

// watchValidate validates once, then re-validates on every write to the
// schema or a data file until interrupted. Validation failures are
// reported but do not stop the watch.
func watchValidate(ctx context.Context, schemaPath string, dataPaths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch parent directories; editors often replace files rather than
	// writing them in place.
	dirs := map[string]bool{}
	for _, p := range append([]string{schemaPath}, dataPaths...) {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	relevant := map[string]bool{}
	for _, p := range append([]string{schemaPath}, dataPaths...) {
		relevant[filepath.Clean(p)] = true
	}

	report := func() {
		if err := validateOnce(schemaPath, dataPaths); err != nil {
			fmt.Fprintln(os.Stderr, "typegraph:", err)
		}
	}
	report()

	// Coalesce bursts of events into one re-run.
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Info("change detected", zap.String("file", ev.Name))
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, report)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
