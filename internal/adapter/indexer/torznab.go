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

type torznabSettings struct {
	BaseURL        string `json:"baseUrl"`
	APIPath        string `json:"apiPath"`
	APIKey         string `json:"apiKey"`
	Categories     string `json:"categories"`
	MinimumSeeders int    `json:"minimumSeeders"`
}

// torznabIndexer speaks the torznab feed dialect used by torrent trackers
// and aggregators (Jackett, Prowlarr).
type torznabIndexer struct {
	name     string
	settings torznabSettings
	client   *http.Client
	limiter  RateLimiter
	log      *slog.Logger
}

func newTorznab(def *entity.IndexerDefinition, client *http.Client, limiter RateLimiter, log *slog.Logger) (*torznabIndexer, error) {
	settings := torznabSettings{APIPath: "/api", Categories: "4000", MinimumSeeders: 1}
	if def.Settings != "" {
		if err := json.Unmarshal([]byte(def.Settings), &settings); err != nil {
			return nil, fmt.Errorf("cannot parse torznab settings: %w", err)
		}
	}

	return &torznabIndexer{
		name:     def.Name,
		settings: settings,
		client:   client,
		limiter:  limiter,
		log:      log.With(slog.String("indexer", def.Name)),
	}, nil
}

func (t *torznabIndexer) Name() string {
	return t.name
}

func (t *torznabIndexer) Protocol() entity.Protocol {
	return entity.ProtocolTorrent
}

func (t *torznabIndexer) Search(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error) {
	if err := t.limiter.WaitAndPulse(ctx, t.name, requestInterval); err != nil {
		return nil, err
	}

	url := searchURL(t.settings.BaseURL, t.settings.APIPath, t.settings.APIKey, t.settings.Categories, term)

	t.log.Info("Searching torznab indexer", slog.String("term", term))

	feed, err := fetchFeed(ctx, t.client, url)
	if err != nil {
		return nil, fmt.Errorf("torznab search failed: %w", err)
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
			InfoURL:     item.Comments,
			Indexer:     t.name,
			Protocol:    entity.ProtocolTorrent,
			PublishDate: parsePubDate(item.PubDate),
			Categories:  item.attrs("category"),
		}

		// The enclosure carries the .torrent URL; the plain link is a
		// last-resort fallback.
		if item.Enclosure != nil {
			release.DownloadURL = item.Enclosure.URL
			release.Size = item.Enclosure.Length
		}
		if release.DownloadURL == "" {
			release.DownloadURL = item.Link
		}

		if v, err := strconv.ParseInt(item.attr("size"), 10, 64); err == nil {
			release.Size = v
		}
		if v, err := strconv.Atoi(item.attr("seeders")); err == nil {
			release.Seeders = v
		}
		if v, err := strconv.Atoi(item.attr("peers")); err == nil {
			release.Leechers = v
		}

		if release.GUID == "" {
			release.GUID = util.HashID(release.DownloadURL)
		}

		if release.Seeders < t.settings.MinimumSeeders {
			continue
		}

		releases = append(releases, release)
	}

	t.log.Debug("Torznab search done", slog.Int("count", len(releases)))

	return releases, nil
}
