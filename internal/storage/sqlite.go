package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rusenback/ssreport/internal/model"
)

// ErrRunNotFound is returned when a run id is not in the database
var ErrRunNotFound = errors.New("storage: run not found")

// DataPoint represents a single data point in time
type DataPoint struct {
	Timestamp int64 // ns
	Value     float64
}

// RunInfo describes one stored report
type RunInfo struct {
	ID       string
	Source   string
	Kind     string
	Metric   string
	Created  time.Time
	RowCount int
}

// Storage persists analysis reports
type Storage struct {
	db *sql.DB
}

// DefaultPath returns ~/.ssreport/reports.db
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ssreport", "reports.db"), nil
}

// NewStorage opens (and creates if needed) the database at path
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps the in-memory database alive in tests
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// createTables creates the database schema
func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		kind TEXT NOT NULL,
		metric TEXT NOT NULL,
		created INTEGER NOT NULL,
		params TEXT,
		clock_ticks INTEGER,
		page_size INTEGER,
		avg_acq_us REAL,
		acq_mean REAL,
		acq_stddev REAL,
		acq_threshold REAL,
		acq_samples INTEGER,
		skipped INTEGER
	);

	CREATE TABLE IF NOT EXISTS run_columns (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		position INTEGER NOT NULL,
		value REAL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run_time
	ON samples(run_id, timestamp);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveReport writes a report in one transaction and returns its run id
func (s *Storage) SaveReport(ctx context.Context, r model.Report) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, source, kind, metric, created, params, clock_ticks, page_size,
		 avg_acq_us, acq_mean, acq_stddev, acq_threshold, acq_samples, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, r.Source, r.Kind, r.Metric, time.Now().Unix(), r.Params,
		r.Config.ClockTicks, r.Config.PageSize,
		r.AvgAcqMicros, r.Acq.Mean, r.Acq.StdDev, r.Acq.Threshold, r.Acq.Samples,
		r.Table.Skipped,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for pos, name := range r.Table.MetricColumns() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_columns (run_id, position, name) VALUES (?, ?, ?)",
			id, pos, name,
		); err != nil {
			return "", fmt.Errorf("insert column %q: %w", name, err)
		}
	}

	if err := batchWrite(ctx, tx, id, r.Table.Rows); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// batchWrite inserts every non-null cell of rows
func batchWrite(ctx context.Context, tx *sql.Tx, runID string, rows []model.Row) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, timestamp, position, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		// rows with no cell at all still need to survive a round trip
		empty := true
		for pos, cell := range row.Cells {
			if cell == nil {
				continue
			}
			empty = false
			if _, err := stmt.ExecContext(ctx, runID, row.Timestamp, pos, *cell); err != nil {
				return fmt.Errorf("insert sample at %d: %w", row.Timestamp, err)
			}
		}
		if empty {
			if _, err := stmt.ExecContext(ctx, runID, row.Timestamp, -1, nil); err != nil {
				return fmt.Errorf("insert sample at %d: %w", row.Timestamp, err)
			}
		}
	}
	return nil
}

// LoadReport reads a stored report back
func (s *Storage) LoadReport(ctx context.Context, id string) (model.Report, error) {
	r := model.Report{}
	err := s.db.QueryRowContext(ctx, `
		SELECT source, kind, metric, params, clock_ticks, page_size,
		       avg_acq_us, acq_mean, acq_stddev, acq_threshold, acq_samples, skipped
		FROM runs WHERE id = ?
	`, id).Scan(
		&r.Source, &r.Kind, &r.Metric, &r.Params, &r.Config.ClockTicks, &r.Config.PageSize,
		&r.AvgAcqMicros, &r.Acq.Mean, &r.Acq.StdDev, &r.Acq.Threshold, &r.Acq.Samples, &r.Table.Skipped,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return r, err
	}

	columns, err := s.columns(ctx, id)
	if err != nil {
		return r, err
	}
	r.Table.Columns = append([]string{model.TimestampColumn}, columns...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, position, value
		FROM samples
		WHERE run_id = ?
		ORDER BY timestamp ASC, position ASC
	`, id)
	if err != nil {
		return r, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts    int64
			pos   int
			value sql.NullFloat64
		)
		if err := rows.Scan(&ts, &pos, &value); err != nil {
			return r, err
		}

		n := len(r.Table.Rows)
		if n == 0 || r.Table.Rows[n-1].Timestamp != ts {
			r.Table.Rows = append(r.Table.Rows, model.Row{Timestamp: ts, Cells: make([]*float64, len(columns))})
			n++
		}
		if pos >= 0 && pos < len(columns) && value.Valid {
			v := value.Float64
			r.Table.Rows[n-1].Cells[pos] = &v
		}
	}
	return r, rows.Err()
}

func (s *Storage) columns(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM run_columns WHERE run_id = ? ORDER BY position ASC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Query retrieves the non-null values of one column of a run
func (s *Storage) Query(ctx context.Context, id, column string) ([]DataPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.timestamp, s.value
		FROM samples s
		JOIN run_columns c ON c.run_id = s.run_id AND c.position = s.position
		WHERE s.run_id = ? AND c.name = ? AND s.value IS NOT NULL
		ORDER BY s.timestamp ASC
	`, id, column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows scans database rows into DataPoints
func scanRows(rows *sql.Rows) ([]DataPoint, error) {
	var points []DataPoint

	for rows.Next() {
		var p DataPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// ListRuns returns stored runs, newest first
func (s *Storage) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.source, r.kind, r.metric, r.created,
		       (SELECT COUNT(DISTINCT timestamp) FROM samples WHERE run_id = r.id)
		FROM runs r
		ORDER BY r.created DESC, r.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			created int64
		)
		if err := rows.Scan(&info.ID, &info.Source, &info.Kind, &info.Metric, &created, &info.RowCount); err != nil {
			return nil, err
		}
		info.Created = time.Unix(created, 0)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its samples
func (s *Storage) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	for _, q := range []string{
		"DELETE FROM run_columns WHERE run_id = ?",
		"DELETE FROM samples WHERE run_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the storage
func (s *Storage) Close() error {
	return s.db.Close()
}
