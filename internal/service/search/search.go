package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/grabarr/grabarr/internal/entity"
)

type Indexer interface {
	Name() string
	Protocol() entity.Protocol
	Search(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error)
}

type DefinitionStore interface {
	All(ctx context.Context) ([]*entity.IndexerDefinition, error)
	Get(ctx context.Context, id int64) (*entity.IndexerDefinition, error)
	Insert(ctx context.Context, def *entity.IndexerDefinition) (int64, error)
	Update(ctx context.Context, def *entity.IndexerDefinition) error
	Delete(ctx context.Context, id int64) error
}

// Factory builds a concrete indexer from its stored definition.
type Factory func(def *entity.IndexerDefinition) (Indexer, error)

type SearchService struct {
	defs    DefinitionStore
	factory Factory
	log     *slog.Logger
}

func New(defs DefinitionStore, factory Factory, log *slog.Logger) *SearchService {
	return &SearchService{
		defs:    defs,
		factory: factory,
		log:     log.With(slog.String("service", "search")),
	}
}

// SearchAll queries every search-enabled indexer concurrently and merges
// their results. A failing indexer is logged and skipped so that one bad
// tracker cannot empty the whole result set.
func (s *SearchService) SearchAll(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error) {
	defs, err := s.defs.All(ctx)
	if err != nil {
		return nil, err
	}

	type indexerResult struct {
		def      *entity.IndexerDefinition
		releases []*entity.ReleaseCandidate
		err      error
	}

	results := make(chan indexerResult)

	var wg sync.WaitGroup
	for _, def := range defs {
		if !def.EnableSearch {
			continue
		}

		idx, err := s.factory(def)
		if err != nil {
			s.log.Warn("Cannot build indexer", slog.String("indexer", def.Name), slog.Any("error", err))
			continue
		}

		wg.Add(1)
		go func(def *entity.IndexerDefinition, idx Indexer) {
			defer wg.Done()

			releases, err := idx.Search(ctx, term)
			results <- indexerResult{def: def, releases: releases, err: err}
		}(def, idx)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var merged []*entity.ReleaseCandidate
	for res := range results {
		if res.err != nil {
			s.log.Warn("Indexer search failed",
				slog.String("indexer", res.def.Name), slog.Any("error", res.err))
			continue
		}

		for _, rel := range res.releases {
			rel.IndexerID = res.def.ID
			merged = append(merged, rel)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Seeders != merged[j].Seeders {
			return merged[i].Seeders > merged[j].Seeders
		}

		return merged[i].PublishDate.After(merged[j].PublishDate)
	})

	return merged, nil
}

func (s *SearchService) Indexers(ctx context.Context) ([]*entity.IndexerDefinition, error) {
	return s.defs.All(ctx)
}

func (s *SearchService) GetIndexer(ctx context.Context, id int64) (*entity.IndexerDefinition, error) {
	return s.defs.Get(ctx, id)
}

func (s *SearchService) AddIndexer(ctx context.Context, def *entity.IndexerDefinition) (int64, error) {
	return s.defs.Insert(ctx, def)
}

func (s *SearchService) UpdateIndexer(ctx context.Context, def *entity.IndexerDefinition) error {
	return s.defs.Update(ctx, def)
}

func (s *SearchService) DeleteIndexer(ctx context.Context, id int64) error {
	return s.defs.Delete(ctx, id)
}
