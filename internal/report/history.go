package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/velotools/velocheck/internal/probe"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	total INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	errored INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	endpoint TEXT NOT NULL,
	status TEXT NOT NULL,
	discrepancies INTEGER NOT NULL,
	detail TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// History appends each run to a local sqlite database so contract drift can
// be traced back to when it started.
type History struct {
	log logrus.FieldLogger
	db  *sql.DB
}

// NewHistory opens (creating if needed) the history database at path.
func NewHistory(log logrus.FieldLogger, path string) (*History, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	// modernc sqlite serializes writes anyway; one connection avoids
	// SQLITE_BUSY on concurrent sink writes.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating history tables: %w", err)
	}

	return &History{
		log: log.WithField("component", "report.history"),
		db:  db,
	}, nil
}

var _ Sink = (*History)(nil)

func (h *History) Write(results []probe.Result, summary probe.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(started_at, total, passed, failed, errored, duration_ms) VALUES(?,?,?,?,?,?)`,
		time.Now().Unix(), summary.Total, summary.Passed, summary.Failed, summary.Errored,
		summary.Duration.Milliseconds())
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("recording run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("recording run: %w", err)
	}

	for _, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results(run_id, endpoint, status, discrepancies, detail, duration_ms) VALUES(?,?,?,?,?,?)`,
			runID, r.Endpoint.Name, statusOf(r), len(r.Discrepancies), detailText(r),
			r.Duration.Milliseconds()); err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("recording result for %s: %w", r.Endpoint.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"results": len(results),
	}).Debug("run recorded")

	return nil
}

// Close releases the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// detailText flattens a result's discrepancies into one line per entry.
func detailText(r probe.Result) string {
	if len(r.Discrepancies) == 0 {
		return ""
	}

	lines := make([]string, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		lines = append(lines, d.String())
	}

	return strings.Join(lines, "\n")
}
