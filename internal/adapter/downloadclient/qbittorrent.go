package downloadclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/grabarr/grabarr/internal/entity"
)

type qbittorrentSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	UseSSL   bool   `json:"useSsl"`
	Username string `json:"username"`
	Password string `json:"password"`
	Category string `json:"category"`
}

func (s *qbittorrentSettings) baseURL() string {
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

// qbittorrentClient talks to qBittorrent's WebUI API v2. Authentication is a
// session cookie kept in the client's jar for the lifetime of the adapter.
type qbittorrentClient struct {
	name     string
	settings qbittorrentSettings
	http     *http.Client
	log      *slog.Logger
}

func newQBittorrent(def *entity.DownloadClientDefinition, log *slog.Logger) (*qbittorrentClient, error) {
	settings := qbittorrentSettings{Host: "localhost", Port: 8080, Category: "grabarr"}
	if def.Settings != "" {
		if err := json.Unmarshal([]byte(def.Settings), &settings); err != nil {
			return nil, fmt.Errorf("cannot parse qbittorrent settings: %w", err)
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create cookie jar: %w", err)
	}

	return &qbittorrentClient{
		name:     def.Name,
		settings: settings,
		http:     &http.Client{Timeout: defaultTimeout, Jar: jar},
		log:      log.With(slog.String("download_client", def.Name)),
	}, nil
}

func (c *qbittorrentClient) Name() string {
	return c.name
}

func (c *qbittorrentClient) Protocol() entity.Protocol {
	return entity.ProtocolTorrent
}

func (c *qbittorrentClient) Add(ctx context.Context, release *entity.ReleaseCandidate) (string, error) {
	c.log.Info("Sending release to qBittorrent", slog.String("title", release.Title))

	if err := c.authenticate(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("urls", release.DownloadURL)
	form.Set("category", c.settings.Category)

	body, err := c.postForm(ctx, c.settings.baseURL()+"/api/v2/torrents/add", form)
	if err != nil {
		return "", fmt.Errorf("cannot add torrent: %w", err)
	}

	if strings.Contains(strings.ToLower(body), "fail") {
		return "", fmt.Errorf("qbittorrent rejected torrent: %s", body)
	}

	// The add endpoint returns no identifier; the release GUID becomes the
	// opaque download id we track against the queue.
	downloadID := release.GUID
	if downloadID == "" {
		downloadID = uuid.NewString()
	}

	return downloadID, nil
}

func (c *qbittorrentClient) Items(ctx context.Context) ([]*entity.DownloadQueueItem, error) {
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/v2/torrents/info?category=%s", c.settings.baseURL(), url.QueryEscape(c.settings.Category))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch torrent list: %w", err)
	}

	var torrents []struct {
		Hash        string `json:"hash"`
		Name        string `json:"name"`
		TotalSize   int64  `json:"total_size"`
		Completed   int64  `json:"completed"`
		ContentPath string `json:"content_path"`
		Category    string `json:"category"`
		State       string `json:"state"`
	}
	if err := json.Unmarshal([]byte(body), &torrents); err != nil {
		return nil, fmt.Errorf("cannot parse torrent list: %w", err)
	}

	items := make([]*entity.DownloadQueueItem, 0, len(torrents))
	for _, t := range torrents {
		items = append(items, &entity.DownloadQueueItem{
			DownloadID:    t.Hash,
			Title:         t.Name,
			TotalSize:     t.TotalSize,
			RemainingSize: t.TotalSize - t.Completed,
			OutputPath:    t.ContentPath,
			Category:      t.Category,
			Status:        mapQBittorrentState(t.State),
			ClientName:    c.name,
			ClientHost:    c.settings.Host,
			Protocol:      entity.ProtocolTorrent,
		})
	}

	return items, nil
}

// authenticate logs in when credentials are configured. qBittorrent keeps the
// SID cookie valid for a while; re-login on every call is what the WebUI API
// tolerates and keeps the adapter stateless across failures.
func (c *qbittorrentClient) authenticate(ctx context.Context) error {
	if c.settings.Username == "" {
		return nil
	}

	form := url.Values{}
	form.Set("username", c.settings.Username)
	form.Set("password", c.settings.Password)

	body, err := c.postForm(ctx, c.settings.baseURL()+"/api/v2/auth/login", form)
	if err != nil {
		return fmt.Errorf("qbittorrent login failed: %w", err)
	}

	if strings.Contains(strings.ToLower(body), "fails") {
		return fmt.Errorf("qbittorrent login rejected")
	}

	return nil
}

func (c *qbittorrentClient) postForm(ctx context.Context, reqURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *qbittorrentClient) get(ctx context.Context, reqURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	return c.do(req)
}

func (c *qbittorrentClient) do(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}

// mapQBittorrentState folds qBittorrent's state vocabulary onto the unified
// status enum. Seeding and stalled-upload states mean the payload is complete.
func mapQBittorrentState(state string) entity.DownloadItemStatus {
	switch state {
	case "uploading", "stalledUP", "pausedUP", "queuedUP", "forcedUP":
		return entity.DownloadItemStatusCompleted
	case "downloading", "stalledDL", "forcedDL", "metaDL":
		return entity.DownloadItemStatusDownloading
	case "pausedDL", "queuedDL":
		return entity.DownloadItemStatusPaused
	case "error", "missingFiles":
		return entity.DownloadItemStatusFailed
	}

	return entity.DownloadItemStatusQueued
}
