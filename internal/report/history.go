package report

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/gdmirror/gdmirror/internal/mirror"
	_ "modernc.org/sqlite"
)

// History is a local journal of completed mirror runs. It is write-only with
// respect to planning; reconciliation never reads it.
type History struct {
	db *sql.DB
}

// RunMeta captures the invocation parameters recorded alongside a report
type RunMeta struct {
	InputDir   string
	TargetID   string
	OutputName string
	Profile    string
}

// RunSummary is one row of recorded run history
type RunSummary struct {
	RunID          string    `json:"runId"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	DryRun         bool      `json:"dryRun"`
	InputDir       string    `json:"inputDir"`
	TargetID       string    `json:"targetId"`
	OutputName     string    `json:"outputName,omitempty"`
	Uploaded       int       `json:"uploaded"`
	Updated        int       `json:"updated"`
	Deleted        int       `json:"deleted"`
	FoldersCreated int       `json:"foldersCreated"`
	Failed         int       `json:"failed"`
}

// Open opens (creating if needed) the history database at the given path
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &History{db: db}
	if err := h.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) migrate(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	input_dir TEXT NOT NULL,
	target_id TEXT NOT NULL,
	output_name TEXT,
	profile TEXT,
	uploaded INTEGER NOT NULL DEFAULT 0,
	updated INTEGER NOT NULL DEFAULT 0,
	deleted INTEGER NOT NULL DEFAULT 0,
	folders_created INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	action TEXT NOT NULL,
	rel_path TEXT NOT NULL,
	remote_id TEXT,
	ok INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Record persists one run report with its items
func (h *History) Record(ctx context.Context, rep *mirror.Report, meta RunMeta) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, dry_run, input_dir, target_id, output_name, profile,
			uploaded, updated, deleted, folders_created, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID, rep.StartedAt.Unix(), rep.FinishedAt.Unix(), boolToInt(rep.DryRun),
		meta.InputDir, meta.TargetID, meta.OutputName, meta.Profile,
		rep.Uploaded, rep.Updated, rep.Deleted, rep.FoldersCreated, rep.Failed)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_items (run_id, seq, action, rel_path, remote_id, ok, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range rep.Items {
		if _, err := stmt.ExecContext(ctx, rep.RunID, i, item.Action, item.RelPath,
			item.ID, boolToInt(item.OK), item.Error); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the most recent runs, newest first
func (h *History) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, dry_run, input_dir, target_id, output_name, profile,
			uploaded, updated, deleted, folders_created, failed
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started, finished int64
		var dryRun int
		var outputName, profile sql.NullString
		if err := rows.Scan(&run.RunID, &started, &finished, &dryRun,
			&run.InputDir, &run.TargetID, &outputName, &profile,
			&run.Uploaded, &run.Updated, &run.Deleted, &run.FoldersCreated, &run.Failed); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(started, 0).UTC()
		run.FinishedAt = time.Unix(finished, 0).UTC()
		run.DryRun = dryRun != 0
		run.OutputName = outputName.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Items returns the recorded item outcomes for one run
func (h *History) Items(ctx context.Context, runID string) ([]mirror.ItemResult, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT action, rel_path, remote_id, ok, error
		FROM run_items WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []mirror.ItemResult
	for rows.Next() {
		var item mirror.ItemResult
		var remoteID, itemErr sql.NullString
		var ok int
		if err := rows.Scan(&item.Action, &item.RelPath, &remoteID, &ok, &itemErr); err != nil {
			return nil, err
		}
		item.ID = remoteID.String
		item.OK = ok != 0
		item.Error = itemErr.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DefaultPath returns the history database location under the config directory
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "history.db")
}
