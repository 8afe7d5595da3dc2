package stringset

import (
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/kailas-cloud/cardex/internal/domain"
)

func TestSet_AddDeduplicatesAndSorts(t *testing.T) {
	s := New(Types)
	s.Add("Water", "Fire", "", "  ", "Fire", "Colorless")

	want := []string{"Colorless", "Fire", "Water"}
	if got := s.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
}

func TestSet_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := New(Rarities)
	s.Add("Rare Holo", "Common", "Uncommon")
	if err := s.Save(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(Path(dir, Rarities))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `["Common","Rare Holo","Uncommon"]` {
		t.Errorf("file = %s", raw)
	}

	loaded, err := Load(dir, Rarities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded.Values(), s.Values()) || loaded.Name() != Rarities {
		t.Errorf("loaded %s = %v", loaded.Name(), loaded.Values())
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir(), Subtypes)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir, Supertypes), []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, Supertypes); err == nil {
		t.Fatal("expected decode error")
	}
}
