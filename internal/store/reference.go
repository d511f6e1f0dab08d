package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/pose"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("already exists")

// Reference represents a named reference pose stored in the database.
type Reference struct {
	ID          string
	Name        string
	Angles      pose.AngleSet
	Fingerprint pose.Fingerprint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Classifier converts the stored row into a catalog entry.
func (r *Reference) Classifier() classifier.Reference {
	return classifier.Reference{Name: r.Name, Angles: r.Angles, Fingerprint: r.Fingerprint}
}

// ReferenceRepository provides CRUD operations for reference poses.
type ReferenceRepository struct {
	db *sql.DB
}

// References returns the reference repository for this store.
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{db: s.db}
}

const referenceColumns = `id, name, angles, fingerprint, created_at, updated_at`

// Create inserts a new reference pose into the database.
func (r *ReferenceRepository) Create(ref *Reference) error {
	angles, fp, err := encodeReference(ref)
	if err != nil {
		return err
	}

	now := time.Now()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO reference_poses (id, name, angles, fingerprint, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.Name, angles, fp, ref.CreatedAt, ref.UpdatedAt,
	)
	return uniqueErr(err)
}

// GetByID retrieves a reference pose by its ID.
func (r *ReferenceRepository) GetByID(id string) (*Reference, error) {
	return scanReference(r.db.QueryRow(
		`SELECT `+referenceColumns+` FROM reference_poses WHERE id = ?`, id,
	))
}

// GetByName retrieves a reference pose by its name.
func (r *ReferenceRepository) GetByName(name string) (*Reference, error) {
	return scanReference(r.db.QueryRow(
		`SELECT `+referenceColumns+` FROM reference_poses WHERE name = ?`, name,
	))
}

// List retrieves all reference poses, newest first.
func (r *ReferenceRepository) List() ([]*Reference, error) {
	return r.query(`SELECT ` + referenceColumns + ` FROM reference_poses ORDER BY created_at DESC, rowid DESC`)
}

// Catalog builds a classifier catalog from the stored references in
// insertion order. An empty table yields classifier.ErrEmptyCatalog.
func (r *ReferenceRepository) Catalog() (*classifier.Catalog, error) {
	refs, err := r.query(`SELECT ` + referenceColumns + ` FROM reference_poses ORDER BY rowid`)
	if err != nil {
		return nil, err
	}

	entries := make([]classifier.Reference, len(refs))
	for i, ref := range refs {
		entries[i] = ref.Classifier()
	}
	return classifier.NewCatalog(entries)
}

// Seed inserts every entry of c whose name is not stored yet and returns
// the number of rows added. newID supplies the primary keys.
func (r *ReferenceRepository) Seed(c *classifier.Catalog, newID func() string) (int, error) {
	added := 0
	for _, name := range c.Names() {
		if _, err := r.GetByName(name); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return added, err
		}

		entry, _ := c.Get(name)
		ref := &Reference{ID: newID(), Name: entry.Name, Angles: entry.Angles, Fingerprint: entry.Fingerprint}
		if err := r.Create(ref); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Update updates an existing reference pose in the database.
func (r *ReferenceRepository) Update(ref *Reference) error {
	angles, fp, err := encodeReference(ref)
	if err != nil {
		return err
	}

	ref.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE reference_poses SET name = ?, angles = ?, fingerprint = ?, updated_at = ?
		 WHERE id = ?`,
		ref.Name, angles, fp, ref.UpdatedAt, ref.ID,
	)
	if err != nil {
		return uniqueErr(err)
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

// Delete removes a reference pose from the database by its ID.
func (r *ReferenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM reference_poses WHERE id = ?`, id)
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

func (r *ReferenceRepository) query(q string) ([]*Reference, error) {
	rows, err := r.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReference(row scanner) (*Reference, error) {
	ref := &Reference{}
	var angles string
	var fp sql.NullString

	err := row.Scan(&ref.ID, &ref.Name, &angles, &fp, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(angles), &ref.Angles); err != nil {
		return nil, fmt.Errorf("reference %s: angles: %w", ref.ID, err)
	}
	if fp.Valid && fp.String != "" {
		if err := json.Unmarshal([]byte(fp.String), &ref.Fingerprint); err != nil {
			return nil, fmt.Errorf("reference %s: fingerprint: %w", ref.ID, err)
		}
	}

	return ref, nil
}

func encodeReference(ref *Reference) (angles string, fp sql.NullString, err error) {
	a, err := json.Marshal(ref.Angles)
	if err != nil {
		return "", fp, err
	}
	if len(ref.Fingerprint) > 0 {
		b, err := json.Marshal(ref.Fingerprint)
		if err != nil {
			return "", fp, err
		}
		fp = sql.NullString{String: string(b), Valid: true}
	}
	return string(a), fp, nil
}

func uniqueErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
