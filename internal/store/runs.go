package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mdimg/internal/models"
)

const (
	timeLayout          = "2006-01-02T15:04:05.000000000Z07:00"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

const fetchRecordColumns = "f.run_id, r.document_path, f.url, f.status, f.destination, f.attempts, f.size_bytes, f.digest, f.error, f.created_at"

// RecordRun inserts one run and its outcomes in a single transaction.
// An empty run.ID is filled with a freshly generated one.
func (s *Store) RecordRun(ctx context.Context, run *models.Run) (err error) {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	if strings.TrimSpace(run.ID) == "" {
		id, err := GenerateRunID(s.RunExists)
		if err != nil {
			return err
		}
		run.ID = id
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, document_path, backup_path, mode, folder, reference_count, rewritten, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.DocumentPath,
		run.BackupPath,
		string(run.Mode),
		nullString(run.Folder),
		run.References,
		boolToInt(run.Rewritten),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, outcome := range run.Outcomes {
		_, err = tx.ExecContext(ctx, `INSERT INTO fetches (run_id, url, status, destination, attempts, size_bytes, digest, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			outcome.URL,
			string(outcome.Status),
			nullString(destinationOf(outcome)),
			outcome.Attempts,
			outcome.SizeBytes,
			nullString(outcome.Digest),
			nullString(outcome.Error),
			formatTime(run.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("insert fetch: %w", err)
		}
	}

	return tx.Commit()
}

// HistoryFilter narrows ListFetches.
type HistoryFilter struct {
	Limit  int
	Status models.OutcomeStatus
	URL    string
}

// ListFetches returns recorded fetch outcomes, newest first.
func (s *Store) ListFetches(ctx context.Context, filter HistoryFilter) ([]models.FetchRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	where := []string{}
	args := []any{}
	if filter.Status != "" {
		where = append(where, "f.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.URL != "" {
		where = append(where, "f.url = ?")
		args = append(args, filter.URL)
	}

	query := `SELECT ` + fetchRecordColumns + ` FROM fetches f JOIN runs r ON r.id = f.run_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY f.created_at DESC, f.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.FetchRecord{}
	for rows.Next() {
		record, err := scanFetchRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRun returns one run with its outcomes, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, document_path, backup_path, mode, folder, reference_count, rewritten, started_at, finished_at FROM runs WHERE id = ?`, id)

	var (
		run        models.Run
		mode       string
		folder     sql.NullString
		rewritten  int
		startedAt  string
		finishedAt string
	)
	if err := row.Scan(&run.ID, &run.DocumentPath, &run.BackupPath, &mode, &folder, &run.References, &rewritten, &startedAt, &finishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	run.Mode = models.Mode(mode)
	run.Folder = folder.String
	run.Rewritten = rewritten != 0
	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT url, status, destination, attempts, size_bytes, digest, error FROM fetches WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			outcome     models.Outcome
			status      string
			destination sql.NullString
			digest      sql.NullString
			errText     sql.NullString
		)
		if err := rows.Scan(&outcome.URL, &status, &destination, &outcome.Attempts, &outcome.SizeBytes, &digest, &errText); err != nil {
			return nil, err
		}
		outcome.Status = models.OutcomeStatus(status)
		if outcome.Status == models.OutcomeSaved {
			outcome.Replacement = destination.String
		}
		outcome.Digest = digest.String
		outcome.Error = errText.String
		run.Outcomes = append(run.Outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFetchRecord(row rowScanner) (models.FetchRecord, error) {
	var (
		record      models.FetchRecord
		status      string
		destination sql.NullString
		digest      sql.NullString
		errText     sql.NullString
		createdAt   string
	)
	if err := row.Scan(&record.RunID, &record.DocumentPath, &record.URL, &status, &destination, &record.Attempts, &record.SizeBytes, &digest, &errText, &createdAt); err != nil {
		return record, err
	}
	record.Status = models.OutcomeStatus(status)
	record.Destination = destination.String
	record.Digest = digest.String
	record.Error = errText.String
	parsed, err := parseTime(createdAt)
	if err != nil {
		return record, err
	}
	record.CreatedAt = parsed
	return record, nil
}

// destinationOf returns the stored location of an outcome; inline payloads
// are recorded by media type only.
func destinationOf(outcome models.Outcome) string {
	switch outcome.Status {
	case models.OutcomeSaved:
		return outcome.Replacement
	case models.OutcomeInlined:
		return "data:" + outcome.MediaType + ";base64"
	default:
		return ""
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
