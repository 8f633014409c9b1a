package runner

import "github.com/jamo/dive-tagger/internal/models"

// Summarize copies the report counts onto a journal run record.
func (r Report) Summarize(run *models.RunRecord) {
	run.Total = r.Total
	run.Matched = r.Matched
	run.Updated = r.Updated
	run.Unchanged = r.Unchanged
	run.Skipped = r.Skipped
	run.WriteErrors = r.WriteErrors
	run.Interrupted = r.Interrupted
}

// DecisionRecords converts outcomes into journal rows.
func (r Report) DecisionRecords(runID string) []models.DecisionRecord {
	records := make([]models.DecisionRecord, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		d := o.Decision
		rec := models.DecisionRecord{
			RunID:     runID,
			PhotoPath: d.Photo.Path,
			Outcome:   string(d.Outcome),
			Reason:    string(d.Reason),
			Status:    string(o.Status),
		}
		if d.IsMatched() {
			rec.DiveNumber = d.DiveNumber
			rec.Confidence = d.Confidence.String()
		}
		if o.WriteErr != nil {
			rec.WriteError = o.WriteErr.Error()
		}
		for _, c := range d.Candidates {
			rec.Candidates = append(rec.Candidates, c.Dive.Number)
		}
		records = append(records, rec)
	}
	return records
}
