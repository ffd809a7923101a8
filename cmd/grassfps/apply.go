package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/akedrou/textdiff"
	"github.com/goccy/go-yaml"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/grassfps/grassfps/internal/database"
	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/metrics"
	"github.com/grassfps/grassfps/internal/patcher"
	"github.com/grassfps/grassfps/internal/record"
)

type applyParams struct {
	configParams
	input    string
	dsn      string
	output   string
	only     []string
	workers  int
	diff     bool
	progress bool
	metrics  string
}

func init() {
	var params applyParams

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Patch grass records",
		Long: `Patch grass records read from a file or a SQLite database.

Only the records changed by at least one category are written. With --input the
changed records go to --output, or to standard output unless --diff is given.
With --db they are written back to the database unless --output is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return doApply(ctx, cmd, params)
		},
	}

	params.addFlags(apply.Flags())
	apply.Flags().StringVarP(&params.input, "input", "i", "", "YAML or JSON file holding the grass records")
	apply.Flags().StringVar(&params.dsn, "db", "", "SQLite database holding the grass records")
	apply.Flags().StringVarP(&params.output, "output", "o", "", "file receiving the changed records, format chosen by extension")
	apply.Flags().StringSliceVar(&params.only, "only", nil, "apply only categories whose identifier matches the glob, may be repeated")
	apply.Flags().IntVar(&params.workers, "workers", 0, "records patched concurrently (default from configuration)")
	apply.Flags().BoolVar(&params.diff, "diff", false, "print a unified diff per changed record")
	apply.Flags().BoolVar(&params.progress, "progress", false, "show a progress bar on standard error")
	apply.Flags().StringVar(&params.metrics, "metrics", "", "write the run's Prometheus metrics to this file in text format")
	apply.MarkFlagsOneRequired("input", "db")
	apply.MarkFlagsMutuallyExclusive("input", "db")

	RootCommand.AddCommand(apply)
}

func doApply(ctx context.Context, cmd *cobra.Command, params applyParams) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	root, err := params.load(log)
	if err != nil {
		return err
	}

	categories, err := root.Select(params.only...)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		log.Warnf("No category selected")
	}

	p, err := root.NewPatcher(log, categories)
	if err != nil {
		return err
	}
	if params.workers > 0 {
		p = p.WithWorkers(params.workers)
	}

	var (
		recs []*record.Grass
		db   *database.Database
	)

	if params.dsn != "" {
		db = (&database.Database{}).WithDSN(params.dsn).WithLogger(log)
		if err := db.InitDB(ctx); err != nil {
			return err
		}
		defer db.CloseDB()

		if recs, err = db.LoadGrass(ctx); err != nil {
			return err
		}
	} else if recs, err = record.ReadFile(params.input); err != nil {
		return err
	}

	log.Infof("Patching %d records with %d categories", len(recs), len(categories))

	var progress func()
	if params.progress {
		bar := progressbar.NewOptions(len(recs),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("patching"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		progress = func() { _ = bar.Add(1) }
	}

	results, err := p.ApplyAll(ctx, recs, progress)
	if err != nil {
		return err
	}

	var changed []*record.Grass
	for _, res := range results {
		if res.Changed {
			changed = append(changed, res.Patched)
			log.Debugf("Record %v changed by %v", res.Patched.Key, res.Categories)
		}
	}

	if params.diff {
		if err := writeDiff(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}

	if err := writeRecords(ctx, cmd, params, db, changed, log); err != nil {
		return err
	}

	if params.metrics != "" {
		if err := metrics.WriteFile(params.metrics); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d records processed, %d changed\n", len(recs), len(changed))
	return nil
}

func writeRecords(ctx context.Context, cmd *cobra.Command, params applyParams, db *database.Database, changed []*record.Grass, log *logging.Logger) error {
	switch {
	case params.output != "":
		log.Debugf("Writing %d records to %v", len(changed), params.output)
		return record.WriteFile(params.output, changed)
	case db != nil:
		log.Debugf("Saving %d records to %v", len(changed), params.dsn)
		return db.SaveGrass(ctx, changed)
	case params.diff:
		return nil
	default:
		return record.Write(cmd.OutOrStdout(), changed, record.FormatYAML)
	}
}

func writeDiff(w io.Writer, results []patcher.Result) error {
	var errs []error
	for _, res := range results {
		if !res.Changed {
			continue
		}

		before, err := yaml.Marshal(res.Original)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		after, err := yaml.Marshal(res.Patched)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		key := res.Original.Key.String()
		if _, err := io.WriteString(w, textdiff.Unified(key, key, string(before), string(after))); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
