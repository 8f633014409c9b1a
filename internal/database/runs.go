package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamo/dive-tagger/internal/models"
)

// ErrRunNotFound is returned when no run matches an id or id prefix.
var ErrRunNotFound = errors.New("run not found")

// StartRun records the beginning of a run and assigns it an id
func (db *DB) StartRun(run *models.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := db.conn.Exec(`
		INSERT INTO runs (id, started_at, dive_log, media_dir, policy, dry_run)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.DiveLog, run.MediaDir, run.Policy, run.DryRun)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// FinishRun stores the final counts of a run
func (db *DB) FinishRun(run *models.RunRecord) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	res, err := db.conn.Exec(`
		UPDATE runs SET
			finished_at = ?, total = ?, matched = ?, updated = ?, unchanged = ?,
			skipped = ?, write_errors = ?, interrupted = ?
		WHERE id = ?
	`, run.FinishedAt, run.Total, run.Matched, run.Updated, run.Unchanged,
		run.Skipped, run.WriteErrors, run.Interrupted, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// GetRuns returns the most recent runs first. limit <= 0 returns all runs.
func (db *DB) GetRuns(limit int) ([]models.RunRecord, error) {
	query := runColumns + ` ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FindRun looks a run up by full id or unique id prefix
func (db *DB) FindRun(idOrPrefix string) (models.RunRecord, error) {
	rows, err := db.conn.Query(runColumns+` WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2`, idOrPrefix+"%")
	if err != nil {
		return models.RunRecord{}, err
	}
	defer rows.Close()

	var found []models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return models.RunRecord{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return models.RunRecord{}, err
	}

	switch len(found) {
	case 0:
		return models.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return models.RunRecord{}, fmt.Errorf("run id prefix %q is ambiguous", idOrPrefix)
	}
}

const runColumns = `
	SELECT id, started_at, finished_at, COALESCE(dive_log, ''), COALESCE(media_dir, ''),
		COALESCE(policy, ''), dry_run, total, matched, COALESCE(updated, 0),
		COALESCE(unchanged, 0), skipped, write_errors, interrupted
	FROM runs`

func scanRun(rows *sql.Rows) (models.RunRecord, error) {
	var run models.RunRecord
	var finished sql.NullTime
	var dryRun, interrupted int

	err := rows.Scan(
		&run.ID, &run.StartedAt, &finished, &run.DiveLog, &run.MediaDir,
		&run.Policy, &dryRun, &run.Total, &run.Matched, &run.Updated,
		&run.Unchanged, &run.Skipped, &run.WriteErrors, &interrupted,
	)
	if err != nil {
		return run, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	run.DryRun = dryRun != 0
	run.Interrupted = interrupted != 0
	return run, nil
}
