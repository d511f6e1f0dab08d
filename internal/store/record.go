package store

import (
	"database/sql"
	"errors"
	"time"
)

// TimelineEntry is one pose segment of a workout, in seconds from the
// start of the reference video.
type TimelineEntry struct {
	StartSec float64
	EndSec   float64
	Pose     string
	Score    float64
}

// Record represents a finished workout session.
type Record struct {
	ID          string
	StartedAt   time.Time
	DurationSec float64
	VideoURL    string
	TotalScore  float64
	Timelines   []TimelineEntry
	CreatedAt   time.Time
}

// RecordRepository provides operations for workout records.
type RecordRepository struct {
	db *sql.DB
}

// Records returns the record repository for this store.
func (s *Store) Records() *RecordRepository {
	return &RecordRepository{db: s.db}
}

// Create inserts a record and its timeline in a single transaction.
func (r *RecordRepository) Create(rec *Record) error {
	rec.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO records (id, started_at, duration_sec, video_url, total_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.DurationSec, rec.VideoURL, rec.TotalScore, rec.CreatedAt,
	)
	if err != nil {
		return uniqueErr(err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO record_timelines (record_id, sequence, start_sec, end_sec, pose, score)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range rec.Timelines {
		if _, err := stmt.Exec(rec.ID, i, e.StartSec, e.EndSec, e.Pose, e.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a record and its timeline.
func (r *RecordRepository) GetByID(id string) (*Record, error) {
	rec := &Record{}
	err := r.db.QueryRow(
		`SELECT id, started_at, duration_sec, video_url, total_score, created_at
		 FROM records WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.StartedAt, &rec.DurationSec, &rec.VideoURL, &rec.TotalScore, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if rec.Timelines, err = r.timelines(id); err != nil {
		return nil, err
	}
	return rec, nil
}

// List retrieves all records, newest first. Timelines are included.
func (r *RecordRepository) List() ([]*Record, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, duration_sec, video_url, total_score, created_at
		 FROM records ORDER BY started_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationSec, &rec.VideoURL, &rec.TotalScore, &rec.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, rec := range records {
		if rec.Timelines, err = r.timelines(rec.ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Delete removes a record and, through the foreign key, its timeline.
func (r *RecordRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *RecordRepository) timelines(id string) ([]TimelineEntry, error) {
	rows, err := r.db.Query(
		`SELECT start_sec, end_sec, pose, score FROM record_timelines
		 WHERE record_id = ? ORDER BY sequence`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.StartSec, &e.EndSec, &e.Pose, &e.Score); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
