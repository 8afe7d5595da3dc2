// Package stringset persists enumerated card values (types, rarities, ...)
// collected while building the index.
package stringset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// Names of the served sets.
const (
	Types      = "type"
	Subtypes   = "subtype"
	Supertypes = "supertype"
	Rarities   = "rarity"
)

// Names lists every served set.
var Names = []string{Types, Subtypes, Supertypes, Rarities}

// Set is a named collection of distinct non-empty strings.
type Set struct {
	name   string
	values map[string]struct{}
}

// New creates an empty set.
func New(name string) *Set {
	return &Set{name: name, values: make(map[string]struct{})}
}

// Name returns the set name.
func (s *Set) Name() string { return s.name }

// Add inserts values, ignoring blank ones.
func (s *Set) Add(values ...string) {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		s.values[v] = struct{}{}
	}
}

// Values returns the members in ascending order.
func (s *Set) Values() []string {
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.values) }

// Path returns the file holding set name under dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Save writes the sorted members to <dir>/<name>.json.
func (s *Set) Save(dir string) error {
	data, err := json.Marshal(s.Values())
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(Path(dir, s.name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	return nil
}

// Load reads set name from dir. A missing file is domain.ErrNotFound.
func Load(dir, name string) (*Set, error) {
	data, err := os.ReadFile(Path(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("string set %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read string set %s: %w", name, err)
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode string set %s: %w", name, err)
	}
	s := New(name)
	s.Add(values...)
	return s, nil
}
