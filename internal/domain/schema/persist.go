package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// FileName is the schema descriptor stored in every resource directory.
const FileName = "schema.json"

// MarshalJSON encodes the schema as {"field": "TYPE_NAME"}.
func (s *Schema) MarshalJSON() ([]byte, error) {
	state := make(map[string]string, s.Len())
	for name, t := range s.Types() {
		state[name] = t.String()
	}
	return json.Marshal(state)
}

// UnmarshalJSON replaces the schema contents. Unknown type names fail
// with an error wrapping domain.ErrInvalidSchema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	types := make(map[string]FieldType, len(state))
	for name, typeName := range state {
		t, err := ParseFieldType(typeName)
		if err != nil {
			return &domain.UnknownFieldTypeError{Field: name, Type: typeName}
		}
		types[name] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = types
	s.committed = false
	return nil
}

// Load reads a persisted schema.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s := New()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	return s, nil
}

// Save writes the schema as indented JSON, creating parent directories.
func (s *Schema) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schema dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // index files are world-readable
		return fmt.Errorf("write schema %s: %w", path, err)
	}
	return nil
}
