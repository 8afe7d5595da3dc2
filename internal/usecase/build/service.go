// Package build creates the on-disk index from the raw catalog data.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	"github.com/kailas-cloud/cardex/internal/repository/stringset"
)

// Raw data layout under the data directory.
const (
	setsFile = "sets/en.json"
	cardsDir = "cards/en"
)

// Stats summarizes a finished build.
type Stats struct {
	Cards  int
	Sets   int
	Values map[string]int
}

// Service rebuilds the index directory.
type Service struct {
	dataDir  string
	indexDir string
	opts     []resource.Option
	logger   *zap.Logger
}

// New creates a build service reading dataDir and writing indexDir.
// opts are applied to every created resource.
func New(dataDir, indexDir string, logger *zap.Logger, opts ...resource.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dataDir:  dataDir,
		indexDir: indexDir,
		opts:     append(opts, resource.WithLogger(logger)),
		logger:   logger,
	}
}

// Run wipes the index directory and rebuilds every resource. Each card
// gets its set embedded under "set".
func (s *Service) Run(ctx context.Context) (Stats, error) {
	if err := os.RemoveAll(s.indexDir); err != nil {
		return Stats{}, fmt.Errorf("wipe index: %w", err)
	}

	sets, byID, err := s.loadSets()
	if err != nil {
		return Stats{}, err
	}

	values := make(map[string]*stringset.Set, len(stringset.Names))
	for _, name := range stringset.Names {
		values[name] = stringset.New(name)
	}
	cards, err := s.loadCards(byID, values)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Cards: len(cards), Sets: len(sets), Values: make(map[string]int, len(values))}
	fields := []zap.Field{zap.Int("cards", stats.Cards), zap.Int("sets", stats.Sets)}
	for _, name := range stringset.Names {
		stats.Values[name] = values[name].Len()
		fields = append(fields, zap.Int(name, values[name].Len()))
		if err := values[name].Save(s.indexDir); err != nil {
			return Stats{}, err
		}
	}
	s.logger.Info("Catalog loaded", fields...)

	s.logger.Info("Building card index")
	if err := s.buildResource(ctx, resource.Cards, cards); err != nil {
		return Stats{}, err
	}
	s.logger.Info("Building set index")
	if err := s.buildResource(ctx, resource.Sets, sets); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Service) loadSets() ([]record.Record, map[string]record.Record, error) {
	sets, err := readRecords(filepath.Join(s.dataDir, setsFile))
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]record.Record, len(sets))
	for _, set := range sets {
		if id, ok := set.String(record.IDField); ok {
			byID[id] = set
		}
	}
	return sets, byID, nil
}

// loadCards reads every per-set card file in name order.
func (s *Service) loadCards(sets map[string]record.Record, values map[string]*stringset.Set) ([]record.Record, error) {
	paths, err := filepath.Glob(filepath.Join(s.dataDir, cardsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list card files: %w", err)
	}
	slices.Sort(paths)

	var cards []record.Record
	for _, path := range paths {
		setID := strings.TrimSuffix(filepath.Base(path), ".json")
		set, ok := sets[setID]
		if !ok {
			return nil, fmt.Errorf("cards file %s: unknown set %q", path, setID)
		}
		recs, err := readRecords(path)
		if err != nil {
			return nil, err
		}
		for _, card := range recs {
			card["set"] = map[string]any(set)
			values[stringset.Types].Add(card.Strings("types")...)
			values[stringset.Subtypes].Add(card.Strings("subtypes")...)
			if v, ok := card.String("supertype"); ok {
				values[stringset.Supertypes].Add(v)
			}
			if v, ok := card.String("rarity"); ok {
				values[stringset.Rarities].Add(v)
			}
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// buildResource runs the two passes: observe every record and commit the
// schema, then add every record and commit the index.
func (s *Service) buildResource(ctx context.Context, name string, recs []record.Record) error {
	res, err := resource.Create(s.indexDir, name, s.opts...)
	if err != nil {
		return err
	}
	defer res.Close()

	for _, rec := range recs {
		m, _, err := record.Process(rec)
		if err != nil {
			return fmt.Errorf("process %s %q: %w", name, rec.ID(), err)
		}
		if err := res.ObserveSchema(m); err != nil {
			return err
		}
	}
	if err := res.CommitSchema(); err != nil {
		return err
	}

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
		if err := res.Add(ctx, rec); err != nil {
			return err
		}
	}
	if err := res.Commit(ctx); err != nil {
		return err
	}
	return res.Close()
}

func readRecords(path string) ([]record.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := record.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}
