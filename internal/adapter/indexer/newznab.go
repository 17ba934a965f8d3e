package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/grabarr/grabarr/internal/entity"
	"github.com/grabarr/grabarr/internal/util"
)

type newznabSettings struct {
	BaseURL    string `json:"baseUrl"`
	APIPath    string `json:"apiPath"`
	APIKey     string `json:"apiKey"`
	Categories string `json:"categories"`
}

// newznabIndexer speaks the newznab feed dialect used by usenet indexes.
// Usenet releases have no peer counts; their seeder value stays zero.
type newznabIndexer struct {
	name     string
	settings newznabSettings
	client   *http.Client
	limiter  RateLimiter
	log      *slog.Logger
}

func newNewznab(def *entity.IndexerDefinition, client *http.Client, limiter RateLimiter, log *slog.Logger) (*newznabIndexer, error) {
	settings := newznabSettings{APIPath: "/api", Categories: "4000"}
	if def.Settings != "" {
		if err := json.Unmarshal([]byte(def.Settings), &settings); err != nil {
			return nil, fmt.Errorf("cannot parse newznab settings: %w", err)
		}
	}

	return &newznabIndexer{
		name:     def.Name,
		settings: settings,
		client:   client,
		limiter:  limiter,
		log:      log.With(slog.String("indexer", def.Name)),
	}, nil
}

func (n *newznabIndexer) Name() string {
	return n.name
}

func (n *newznabIndexer) Protocol() entity.Protocol {
	return entity.ProtocolUsenet
}

func (n *newznabIndexer) Search(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error) {
	if err := n.limiter.WaitAndPulse(ctx, n.name, requestInterval); err != nil {
		return nil, err
	}

	url := searchURL(n.settings.BaseURL, n.settings.APIPath, n.settings.APIKey, n.settings.Categories, term)

	n.log.Info("Searching newznab indexer", slog.String("term", term))

	feed, err := fetchFeed(ctx, n.client, url)
	if err != nil {
		return nil, fmt.Errorf("newznab search failed: %w", err)
	}

	var releases []*entity.ReleaseCandidate
	for i := range feed.Channel.Items {
		item := &feed.Channel.Items[i]
		if item.Title == "" {
			continue
		}

		release := &entity.ReleaseCandidate{
			GUID:        item.GUID,
			Title:       item.Title,
			DownloadURL: item.Link,
			InfoURL:     item.Comments,
			Indexer:     n.name,
			Protocol:    entity.ProtocolUsenet,
			PublishDate: parsePubDate(item.PubDate),
			Categories:  item.attrs("category"),
		}

		if v, err := strconv.ParseInt(item.attr("size"), 10, 64); err == nil {
			release.Size = v
		}

		if release.GUID == "" {
			release.GUID = util.HashID(release.DownloadURL)
		}

		releases = append(releases, release)
	}

	n.log.Debug("Newznab search done", slog.Int("count", len(releases)))

	return releases, nil
}
