package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lectern/internal/manifest"
)

const jobColumns = "id, position, section_label, title, lecture_id, source_url, video_id, status, error_message, created_at, updated_at"

// Build replaces the queue contents with jobs flattened from the manifest.
// The queue is built exactly once per run, before any worker starts, and is
// never refilled mid-run.
func (s *Store) Build(ctx context.Context, entries []manifest.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin build tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, entry := range entries {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO jobs (position, section_label, title, lecture_id, source_url, status, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(i),
			entry.SectionLabel,
			entry.Title,
			entry.LectureID,
			entry.SourceURL,
			StatusPending,
			now,
			now,
		); err != nil {
			return 0, fmt.Errorf("insert job %q: %w", entry.LectureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit build: %w", err)
	}
	return len(entries), nil
}

// ClaimNext atomically removes the head pending job from the shared queue and
// marks it processing for the caller. It returns nil once the queue is
// exhausted. The select-and-flip is serialized by the store's claim mutex and
// guarded by a status check in the UPDATE, so each job is delivered to
// exactly one concurrent caller.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY position LIMIT 1`,
		StatusPending,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusProcessing,
		now.Format(time.RFC3339Nano),
		job.ID,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("claim job %d: %w", job.ID, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("claim job %d: %w", job.ID, err)
	} else if affected != 1 {
		// Another process got there first; the guard refused the flip.
		return nil, fmt.Errorf("claim job %d: lost race for pending status", job.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	job.Status = StatusProcessing
	job.UpdatedAt = now
	return job, nil
}

// SetVideoID records the video identifier the pipeline discovered for a job.
func (s *Store) SetVideoID(ctx context.Context, id int64, videoID string) error {
	if err := s.exec(
		ctx,
		`UPDATE jobs SET video_id = ?, updated_at = ? WHERE id = ?`,
		videoID,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set video id: %w", err)
	}
	return nil
}

// MarkCompleted records a successful job outcome.
func (s *Store) MarkCompleted(ctx context.Context, id int64) error {
	if err := s.exec(
		ctx,
		`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusCompleted,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// MarkFailed records a failed job outcome with its reason.
func (s *Store) MarkFailed(ctx context.Context, id int64, reason string) error {
	if err := s.exec(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed,
		reason,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// GetByID returns one job by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

// List returns all jobs in queue order.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Failed returns every failed job, in queue order, with enough identity to
// retry manually.
func (s *Store) Failed(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY position`,
		StatusFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("list failed jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Summarize aggregates job counts by status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending = count
		case StatusProcessing:
			summary.Processing = count
		case StatusCompleted:
			summary.Completed = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}

// ResetStuck returns processing jobs to pending after an aborted run.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed returns failed jobs to pending so a new run can pick them up.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed jobs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job        Job
		videoID    sql.NullString
		errMessage sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Position,
		&job.SectionLabel,
		&job.Title,
		&job.LectureID,
		&job.SourceURL,
		&videoID,
		&job.Status,
		&errMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.DiscoveredVideoID = videoID.String
	job.ErrorMessage = errMessage.String
	job.CreatedAt = parseTimestamp(createdRaw)
	job.UpdatedAt = parseTimestamp(updatedRaw)
	return &job, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
