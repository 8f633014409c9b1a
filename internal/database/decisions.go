package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jamo/dive-tagger/internal/models"
)

// StoreDecisions appends the per-photo decisions of a run
func (db *DB) StoreDecisions(runID string, decisions []models.DecisionRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO decisions (
			run_id, photo_path, outcome, dive_number, confidence,
			reason, status, write_error, candidates
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range decisions {
		candidates, err := json.Marshal(d.Candidates)
		if err != nil {
			return fmt.Errorf("encode candidates for %s: %w", d.PhotoPath, err)
		}

		var dive sql.NullInt64
		if d.Outcome == string(models.OutcomeMatched) {
			dive = sql.NullInt64{Int64: int64(d.DiveNumber), Valid: true}
		}

		_, err = stmt.Exec(
			runID,
			d.PhotoPath,
			d.Outcome,
			dive,
			d.Confidence,
			d.Reason,
			d.Status,
			d.WriteError,
			string(candidates),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRunDecisions returns a run's decisions in the order they were made
func (db *DB) GetRunDecisions(runID string) ([]models.DecisionRecord, error) {
	rows, err := db.conn.Query(`
		SELECT run_id, photo_path, outcome, dive_number, COALESCE(confidence, ''),
			COALESCE(reason, ''), COALESCE(status, ''), COALESCE(write_error, ''),
			COALESCE(candidates, '[]')
		FROM decisions
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []models.DecisionRecord
	for rows.Next() {
		var d models.DecisionRecord
		var dive sql.NullInt64
		var candidatesJSON string

		err := rows.Scan(
			&d.RunID, &d.PhotoPath, &d.Outcome, &dive, &d.Confidence,
			&d.Reason, &d.Status, &d.WriteError, &candidatesJSON,
		)
		if err != nil {
			return nil, err
		}
		if dive.Valid {
			d.DiveNumber = int(dive.Int64)
		}
		if err := json.Unmarshal([]byte(candidatesJSON), &d.Candidates); err != nil {
			return nil, fmt.Errorf("decode candidates for %s: %w", d.PhotoPath, err)
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}
