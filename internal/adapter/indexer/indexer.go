// Package indexer implements the protocol clients that query release
// indexers (torznab for torrent trackers, newznab for usenet indexes) and
// normalize their feeds into release candidates.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

const (
	defaultTimeout = 30 * time.Second

	// Minimum spacing between two requests to the same indexer.
	requestInterval = 2 * time.Second
)

// Indexer is one configured release index that can be searched.
type Indexer interface {
	Name() string
	Protocol() entity.Protocol
	Search(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error)
}

// RateLimiter spaces out requests per provider key. WaitAndPulse blocks until
// the key's slot is free or the context is cancelled.
type RateLimiter interface {
	WaitAndPulse(ctx context.Context, key string, interval time.Duration) error
}

// New constructs the protocol client for a definition. An unknown
// implementation kind yields common.ErrUnknownImplementation so callers can
// skip the definition with a warning instead of failing the whole search.
func New(def *entity.IndexerDefinition, limiter RateLimiter, log *slog.Logger) (Indexer, error) {
	httpClient := &http.Client{Timeout: defaultTimeout}

	switch strings.ToLower(def.Implementation) {
	case "torznab":
		return newTorznab(def, httpClient, limiter, log)
	case "newznab":
		return newNewznab(def, httpClient, limiter, log)
	}

	return nil, fmt.Errorf("indexer implementation %q: %w", def.Implementation, common.ErrUnknownImplementation)
}
