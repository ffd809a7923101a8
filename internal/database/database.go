// Package database stores grass records in SQLite so a host can feed records
// to the patcher and persist the results without going through files.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/achille-roussel/sqlrange"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"modernc.org/sqlite"

	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/record"
)

const SQLiteMemoryOnlyDSN = "file::memory:?cache=shared"

var grassColumns = []string{
	"form_id",
	"source",
	"editor_id",
	"density",
	"min_slope",
	"max_slope",
	"units_from_water",
	"units_from_water_type",
	"position_range",
	"height_range",
	"color_range",
	"wave_period",
	"flags",
}

const createGrassTable = `CREATE TABLE IF NOT EXISTS grass (
	form_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	editor_id TEXT,
	density INTEGER NOT NULL DEFAULT 0,
	min_slope INTEGER NOT NULL DEFAULT 0,
	max_slope INTEGER NOT NULL DEFAULT 0,
	units_from_water INTEGER NOT NULL DEFAULT 0,
	units_from_water_type INTEGER NOT NULL DEFAULT 0,
	position_range REAL NOT NULL DEFAULT 0,
	height_range REAL NOT NULL DEFAULT 0,
	color_range REAL NOT NULL DEFAULT 0,
	wave_period REAL NOT NULL DEFAULT 0,
	flags INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source, form_id)
)`

// Database is a SQLite backed record store. Every statement is logged at trace
// level through the configured logger.
type Database struct {
	db  *sql.DB
	dsn string
	log *logging.Logger
}

// WithDSN selects the SQLite database. Environment variables are expanded.
// Without a DSN an in-memory database is used.
func (d *Database) WithDSN(dsn string) *Database {
	d.dsn = dsn
	return d
}

func (d *Database) WithLogger(log *logging.Logger) *Database {
	d.log = log
	return d
}

func (d *Database) InitDB(ctx context.Context) error {
	dsn := SQLiteMemoryOnlyDSN
	if d.dsn != "" {
		dsn = os.ExpandEnv(d.dsn)
	}

	d.db = sqldblogger.OpenDriver(dsn, &sqlite.Driver{}, zerologadapter.New(d.log.Zerolog()),
		sqldblogger.WithMinimumLevel(sqldblogger.LevelTrace),
		sqldblogger.WithExecerLevel(sqldblogger.LevelTrace),
		sqldblogger.WithQueryerLevel(sqldblogger.LevelTrace),
		sqldblogger.WithPreparerLevel(sqldblogger.LevelTrace),
	)

	if _, err := d.db.ExecContext(ctx, createGrassTable); err != nil {
		_ = d.db.Close()
		d.db = nil
		return fmt.Errorf("failed to create grass table: %w", err)
	}

	d.log.Debugf("Opened record store %s", dsn)
	return nil
}

func (d *Database) CloseDB() {
	if d.db != nil {
		_ = d.db.Close()
	}
}

type grassRow struct {
	FormID             uint32         `sql:"form_id"`
	Source             string         `sql:"source"`
	EditorID           sql.NullString `sql:"editor_id"`
	Density            uint8          `sql:"density"`
	MinSlope           uint8          `sql:"min_slope"`
	MaxSlope           uint8          `sql:"max_slope"`
	UnitsFromWater     uint16         `sql:"units_from_water"`
	UnitsFromWaterType uint8          `sql:"units_from_water_type"`
	PositionRange      float32        `sql:"position_range"`
	HeightRange        float32        `sql:"height_range"`
	ColorRange         float32        `sql:"color_range"`
	WavePeriod         float32        `sql:"wave_period"`
	Flags              uint8          `sql:"flags"`
}

func (r grassRow) grass() *record.Grass {
	g := &record.Grass{
		Key:                record.NewKey(r.FormID, record.SourceKey(r.Source)),
		Density:            r.Density,
		MinSlope:           r.MinSlope,
		MaxSlope:           r.MaxSlope,
		UnitsFromWater:     r.UnitsFromWater,
		UnitsFromWaterType: record.WaterType(r.UnitsFromWaterType),
		PositionRange:      r.PositionRange,
		HeightRange:        r.HeightRange,
		ColorRange:         r.ColorRange,
		WavePeriod:         r.WavePeriod,
		Flags:              record.GrassFlag(r.Flags),
	}
	if r.EditorID.Valid {
		id := r.EditorID.String
		g.EditorID = &id
	}
	return g
}

func values(g *record.Grass) []any {
	// NULL when the record has no name. The driver only binds plain values.
	var editorID any
	if name, ok := g.Name(); ok {
		editorID = name
	}
	return []any{
		int64(g.Key.ID),
		string(g.Key.Source),
		editorID,
		int64(g.Density),
		int64(g.MinSlope),
		int64(g.MaxSlope),
		int64(g.UnitsFromWater),
		int64(g.UnitsFromWaterType),
		float64(g.PositionRange),
		float64(g.HeightRange),
		float64(g.ColorRange),
		float64(g.WavePeriod),
		int64(g.Flags),
	}
}

// QueryGrass iterates over the stored records, optionally restricted to the
// given sources, ordered by source and form id.
func (d *Database) QueryGrass(ctx context.Context, sources ...record.SourceKey) iter.Seq2[*record.Grass, error] {
	query := `SELECT ` + strings.Join(grassColumns, ", ") + ` FROM grass`
	args := make([]any, len(sources))
	if len(sources) > 0 {
		placeholders := make([]string, len(sources))
		for i, s := range sources {
			placeholders[i] = "?"
			args[i] = string(s)
		}
		query += ` WHERE source IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY source, form_id`

	return func(yield func(*record.Grass, error) bool) {
		if d.db == nil {
			yield(nil, ErrNotInitialized)
			return
		}
		for row, err := range sqlrange.QueryContext[grassRow](ctx, d.db, query, args...) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row.grass(), nil) {
				return
			}
		}
	}
}

// LoadGrass collects QueryGrass into a slice.
func (d *Database) LoadGrass(ctx context.Context, sources ...record.SourceKey) ([]*record.Grass, error) {
	var recs []*record.Grass
	for g, err := range d.QueryGrass(ctx, sources...) {
		if err != nil {
			return nil, err
		}
		recs = append(recs, g)
	}
	return recs, nil
}

func (d *Database) GetGrass(ctx context.Context, key record.Key) (*record.Grass, error) {
	if d.db == nil {
		return nil, ErrNotInitialized
	}

	query := `SELECT ` + strings.Join(grassColumns, ", ") + ` FROM grass WHERE source = ? AND form_id = ?`
	for row, err := range sqlrange.QueryContext[grassRow](ctx, d.db, query, string(key.Source), int64(key.ID)) {
		if err != nil {
			return nil, err
		}
		return row.grass(), nil
	}
	return nil, fmt.Errorf("record %v: %w", key, ErrNotFound)
}

// SaveGrass inserts or replaces all records in a single transaction.
func (d *Database) SaveGrass(ctx context.Context, recs []*record.Grass) error {
	if d.db == nil {
		return ErrNotInitialized
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(grassColumns)), ", ")
	query := fmt.Sprintf(`INSERT OR REPLACE INTO grass (%s) VALUES (%s)`, strings.Join(grassColumns, ", "), placeholders)

	return tx1(ctx, d, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, g := range recs {
			if _, err := stmt.ExecContext(ctx, values(g)...); err != nil {
				return fmt.Errorf("record %v: %w", g.Key, err)
			}
		}
		return nil
	})
}

func (d *Database) DeleteGrass(ctx context.Context, key record.Key) error {
	if d.db == nil {
		return ErrNotInitialized
	}

	return tx1(ctx, d, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM grass WHERE source = ? AND form_id = ?`, string(key.Source), int64(key.ID))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("record %v: %w", key, ErrNotFound)
		}
		return nil
	})
}

func tx1(ctx context.Context, db *Database, f func(*sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := f(tx); err != nil {
		return err
	}

	return tx.Commit()
}
