// Package classifier matches a pose against a catalog of named reference
// poses, treating a left-right mirrored subject as the same pose.
package classifier

import (
	"errors"
	"fmt"

	"github.com/ayusman/samadhi/internal/pose"
)

var (
	ErrEmptyCatalog  = errors.New("catalog has no references")
	ErrDimension     = errors.New("reference has wrong dimension")
	ErrDuplicateName = errors.New("duplicate reference name")
	ErrInvalidName   = errors.New("reference name is empty")
)

// Reference is one named pose. Fingerprint is optional; references without
// one are skipped by ClassifyFingerprint.
type Reference struct {
	Name        string           `json:"name"`
	Angles      pose.AngleSet    `json:"angles"`
	Fingerprint pose.Fingerprint `json:"fingerprint,omitempty"`
}

// Catalog is a validated, read-only list of references kept in insertion order.
type Catalog struct {
	refs []Reference
}

// NewCatalog validates refs and builds a catalog. Names must be unique and
// non-empty, angles must lie in [0,180] and fingerprints, when present,
// must have pose.FingerprintLen values.
func NewCatalog(refs []Reference) (*Catalog, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if r.Name == "" || r.Name == Unknown {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
		}
		seen[r.Name] = true

		for j, v := range r.Angles {
			if v < 0 || v > 180 {
				return nil, fmt.Errorf("%w: %s %s=%v outside [0,180]", ErrDimension, r.Name, pose.Joint(j), v)
			}
		}
		if len(r.Fingerprint) != 0 && len(r.Fingerprint) != pose.FingerprintLen {
			return nil, fmt.Errorf("%w: %s fingerprint has %d values, expected %d",
				ErrDimension, r.Name, len(r.Fingerprint), pose.FingerprintLen)
		}

		fp := append(pose.Fingerprint(nil), r.Fingerprint...)
		out = append(out, Reference{Name: r.Name, Angles: r.Angles, Fingerprint: fp})
	}

	return &Catalog{refs: out}, nil
}

// Len returns the number of references.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.refs)
}

// Names returns reference names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		names = append(names, c.refs[i].Name)
	}
	return names
}

// Get returns the reference called name.
func (c *Catalog) Get(name string) (Reference, bool) {
	for i := 0; i < c.Len(); i++ {
		if c.refs[i].Name == name {
			return c.refs[i], true
		}
	}
	return Reference{}, false
}

// DefaultCatalog returns the built-in reference poses. Values are joint
// angles in degrees in pose.Joint order.
func DefaultCatalog() *Catalog {
	refs := make([]Reference, len(defaultReferences))
	copy(refs, defaultReferences)
	return &Catalog{refs: refs}
}

var defaultReferences = []Reference{
	//                        elbow     shoulder  knee      hip       spine align   wrist     ankle     neck
	{Name: "mountain", Angles: pose.AngleSet{170, 170, 15, 15, 178, 178, 178, 178, 177, 95, 95, 175, 175, 120, 120, 145}},
	{Name: "t_pose", Angles: pose.AngleSet{178, 178, 95, 95, 178, 178, 178, 178, 177, 95, 95, 175, 175, 120, 120, 145}},
	{Name: "chair", Angles: pose.AngleSet{165, 165, 170, 170, 95, 95, 85, 85, 150, 80, 80, 175, 175, 75, 75, 140}},
	{Name: "tree", Angles: pose.AngleSet{60, 60, 30, 30, 178, 45, 178, 120, 175, 95, 110, 150, 150, 120, 100, 145}},
	{Name: "warrior2", Angles: pose.AngleSet{178, 178, 95, 95, 100, 175, 110, 140, 170, 90, 120, 175, 175, 110, 105, 140}},
	{Name: "plank", Angles: pose.AngleSet{175, 175, 80, 80, 175, 175, 175, 175, 176, 95, 95, 110, 110, 85, 85, 160}},
	{Name: "downdog", Angles: pose.AngleSet{175, 175, 170, 170, 178, 178, 70, 70, 120, 90, 90, 130, 130, 60, 60, 150}},
}
