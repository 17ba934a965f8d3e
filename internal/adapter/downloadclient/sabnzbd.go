package downloadclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/grabarr/grabarr/internal/entity"
)

type sabnzbdSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	UseSSL   bool   `json:"useSsl"`
	APIKey   string `json:"apiKey"`
	Category string `json:"category"`
}

func (s *sabnzbdSettings) baseURL() string {
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

// sabnzbdClient talks to SABnzbd's JSON API. In-flight items live in the
// queue endpoint, finished ones in history; the unified view needs both.
type sabnzbdClient struct {
	name     string
	settings sabnzbdSettings
	http     *http.Client
	log      *slog.Logger
}

func newSabnzbd(def *entity.DownloadClientDefinition, log *slog.Logger) (*sabnzbdClient, error) {
	settings := sabnzbdSettings{Host: "localhost", Port: 8080, Category: "grabarr"}
	if def.Settings != "" {
		if err := json.Unmarshal([]byte(def.Settings), &settings); err != nil {
			return nil, fmt.Errorf("cannot parse sabnzbd settings: %w", err)
		}
	}

	return &sabnzbdClient{
		name:     def.Name,
		settings: settings,
		http:     &http.Client{Timeout: defaultTimeout},
		log:      log.With(slog.String("download_client", def.Name)),
	}, nil
}

func (c *sabnzbdClient) Name() string {
	return c.name
}

func (c *sabnzbdClient) Protocol() entity.Protocol {
	return entity.ProtocolUsenet
}

func (c *sabnzbdClient) Add(ctx context.Context, release *entity.ReleaseCandidate) (string, error) {
	c.log.Info("Sending release to SABnzbd", slog.String("title", release.Title))

	reqURL := c.apiURL("addurl", url.Values{"name": {release.DownloadURL}})

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("cannot add nzb: %w", err)
	}

	var result struct {
		Status bool     `json:"status"`
		NzoIDs []string `json:"nzo_ids"`
		Error  string   `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return "", fmt.Errorf("cannot parse addurl response: %w", err)
	}

	if !result.Status {
		if result.Error == "" {
			result.Error = "unknown error"
		}

		return "", fmt.Errorf("sabnzbd rejected nzb: %s", result.Error)
	}

	if len(result.NzoIDs) > 0 {
		return result.NzoIDs[0], nil
	}

	return release.GUID, nil
}

func (c *sabnzbdClient) Items(ctx context.Context) ([]*entity.DownloadQueueItem, error) {
	var items []*entity.DownloadQueueItem

	queueBody, err := c.get(ctx, c.apiURL("queue", nil))
	if err != nil {
		return nil, fmt.Errorf("cannot fetch sabnzbd queue: %w", err)
	}

	var queue struct {
		Queue struct {
			Slots []struct {
				NzoID    string `json:"nzo_id"`
				Filename string `json:"filename"`
				MB       string `json:"mb"`
				MBLeft   string `json:"mbleft"`
				Cat      string `json:"cat"`
				Status   string `json:"status"`
			} `json:"slots"`
		} `json:"queue"`
	}
	if err := json.Unmarshal([]byte(queueBody), &queue); err != nil {
		return nil, fmt.Errorf("cannot parse sabnzbd queue: %w", err)
	}

	for _, slot := range queue.Queue.Slots {
		items = append(items, &entity.DownloadQueueItem{
			DownloadID:    slot.NzoID,
			Title:         slot.Filename,
			TotalSize:     megabytesToBytes(slot.MB),
			RemainingSize: megabytesToBytes(slot.MBLeft),
			Category:      slot.Cat,
			Status:        mapSabnzbdQueueStatus(slot.Status),
			ClientName:    c.name,
			ClientHost:    c.settings.Host,
			Protocol:      entity.ProtocolUsenet,
		})
	}

	historyBody, err := c.get(ctx, c.apiURL("history", url.Values{"limit": {"30"}}))
	if err != nil {
		// Queue items are still useful on their own.
		c.log.Error("Cannot fetch sabnzbd history", slog.Any("error", err))

		return items, nil
	}

	var history struct {
		History struct {
			Slots []struct {
				NzoID    string `json:"nzo_id"`
				Name     string `json:"name"`
				Bytes    int64  `json:"bytes"`
				Storage  string `json:"storage"`
				Category string `json:"category"`
				Status   string `json:"status"`
				FailMsg  string `json:"fail_message"`
			} `json:"slots"`
		} `json:"history"`
	}
	if err := json.Unmarshal([]byte(historyBody), &history); err != nil {
		return nil, fmt.Errorf("cannot parse sabnzbd history: %w", err)
	}

	for _, slot := range history.History.Slots {
		items = append(items, &entity.DownloadQueueItem{
			DownloadID: slot.NzoID,
			Title:      slot.Name,
			TotalSize:  slot.Bytes,
			OutputPath: slot.Storage,
			Category:   slot.Category,
			Status:     mapSabnzbdHistoryStatus(slot.Status),
			Message:    slot.FailMsg,
			ClientName: c.name,
			ClientHost: c.settings.Host,
			Protocol:   entity.ProtocolUsenet,
		})
	}

	return items, nil
}

func (c *sabnzbdClient) apiURL(mode string, extra url.Values) string {
	q := url.Values{}
	q.Set("mode", mode)
	q.Set("cat", c.settings.Category)
	q.Set("apikey", c.settings.APIKey)
	q.Set("output", "json")
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	return fmt.Sprintf("%s/api?%s", c.settings.baseURL(), q.Encode())
}

func (c *sabnzbdClient) get(ctx context.Context, reqURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

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

// SABnzbd reports queue sizes as decimal megabyte strings.
func megabytesToBytes(mb string) int64 {
	v, err := strconv.ParseFloat(mb, 64)
	if err != nil {
		return 0
	}

	return int64(v * 1024 * 1024)
}

func mapSabnzbdQueueStatus(status string) entity.DownloadItemStatus {
	switch strings.ToLower(status) {
	case "downloading":
		return entity.DownloadItemStatusDownloading
	case "paused":
		return entity.DownloadItemStatusPaused
	}

	return entity.DownloadItemStatusQueued
}

func mapSabnzbdHistoryStatus(status string) entity.DownloadItemStatus {
	if strings.EqualFold(status, "failed") {
		return entity.DownloadItemStatusFailed
	}

	return entity.DownloadItemStatusCompleted
}
