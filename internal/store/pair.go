package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/similarity"
)

// Pair represents a stored labeled pair.
type Pair struct {
	ID int64
	evaluate.LabeledPair
	CreatedAt time.Time
}

// PairRepository stores the labeled pair dataset used for calibration.
type PairRepository struct {
	db *sql.DB
}

// Pairs returns the labeled pair repository for this store.
func (s *Store) Pairs() *PairRepository {
	return &PairRepository{db: s.db}
}

// Create inserts pairs in a single transaction and returns the stored rows
// in input order.
func (r *PairRepository) Create(pairs []evaluate.LabeledPair) ([]*Pair, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO labeled_pairs (image1_path, image1_answer, image1_result,
			image2_path, image2_answer, image2_result, same, original, flipped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := time.Now()
	out := make([]*Pair, 0, len(pairs))
	for _, p := range pairs {
		orig, err := json.Marshal(p.Original)
		if err != nil {
			return nil, err
		}
		flipped, err := json.Marshal(p.Flipped)
		if err != nil {
			return nil, err
		}

		res, err := stmt.Exec(
			p.Image1.Path, p.Image1.PoseAnswer, p.Image1.PoseResult,
			p.Image2.Path, p.Image2.PoseAnswer, p.Image2.PoseResult,
			p.Same, string(orig), string(flipped), now,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		out = append(out, &Pair{ID: id, LabeledPair: p, CreatedAt: now})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// List retrieves all stored pairs in insertion order.
func (r *PairRepository) List() ([]*Pair, error) {
	rows, err := r.db.Query(
		`SELECT id, image1_path, image1_answer, image1_result,
			image2_path, image2_answer, image2_result, same, original, flipped, created_at
		 FROM labeled_pairs ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []*Pair
	for rows.Next() {
		p := &Pair{}
		var orig, flipped string
		err := rows.Scan(&p.ID,
			&p.Image1.Path, &p.Image1.PoseAnswer, &p.Image1.PoseResult,
			&p.Image2.Path, &p.Image2.PoseAnswer, &p.Image2.PoseResult,
			&p.Same, &orig, &flipped, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		if p.Original, err = decodeResult(orig); err != nil {
			return nil, fmt.Errorf("pair %d: %w", p.ID, err)
		}
		if p.Flipped, err = decodeResult(flipped); err != nil {
			return nil, fmt.Errorf("pair %d: %w", p.ID, err)
		}
		pairs = append(pairs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

// LabeledPairs returns the stored dataset without row metadata.
func (r *PairRepository) LabeledPairs() ([]evaluate.LabeledPair, error) {
	stored, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]evaluate.LabeledPair, len(stored))
	for i, p := range stored {
		out[i] = p.LabeledPair
	}
	return out, nil
}

// DeleteAll removes every stored pair and reports how many were removed.
func (r *PairRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM labeled_pairs`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func decodeResult(s string) (similarity.Result, error) {
	var res similarity.Result
	err := json.Unmarshal([]byte(s), &res)
	return res, err
}
