package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grassfps/grassfps/internal/database"
	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/record"
)

func init() {
	var dsn string

	db := &cobra.Command{
		Use:   "db",
		Short: "Move grass records between files and a SQLite database",
	}
	db.PersistentFlags().StringVar(&dsn, "db", "", "SQLite database holding the grass records")
	_ = db.MarkPersistentFlagRequired("db")

	importCmd := &cobra.Command{
		Use:   "import file...",
		Short: "Insert or replace records read from YAML or JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			var recs []*record.Grass
			for _, path := range args {
				rs, err := record.ReadFile(path)
				if err != nil {
					return err
				}
				recs = append(recs, rs...)
			}

			return withDatabase(cmd.Context(), dsn, log, func(d *database.Database) error {
				if err := d.SaveGrass(cmd.Context(), recs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "imported %d records\n", len(recs))
				return nil
			})
		},
	}

	var (
		output  string
		sources []string
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored records to a file or standard output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			keys := make([]record.SourceKey, len(sources))
			for i, s := range sources {
				keys[i] = record.SourceKey(s)
			}

			return withDatabase(cmd.Context(), dsn, log, func(d *database.Database) error {
				recs, err := d.LoadGrass(cmd.Context(), keys...)
				if err != nil {
					return err
				}
				if output != "" {
					return record.WriteFile(output, recs)
				}
				return record.Write(cmd.OutOrStdout(), recs, record.FormatYAML)
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "file receiving the records, format chosen by extension")
	exportCmd.Flags().StringSliceVar(&sources, "source", nil, "export only records of the given plugin, may be repeated")

	db.AddCommand(importCmd, exportCmd)
	RootCommand.AddCommand(db)
}

func withDatabase(ctx context.Context, dsn string, log *logging.Logger, f func(*database.Database) error) error {
	d := (&database.Database{}).WithDSN(dsn).WithLogger(log)
	if err := d.InitDB(ctx); err != nil {
		return err
	}
	defer d.CloseDB()
	return f(d)
}
