package downloadclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// serverSettings renders the host/port of an httptest server as client
// settings JSON.
func serverSettings(t *testing.T, server *httptest.Server, extra string) string {
	t.Helper()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return fmt.Sprintf(`{"host": %q, "port": %d%s}`, u.Hostname(), port, extra)
}

func TestNewUnknownImplementation(t *testing.T) {
	def := &entity.DownloadClientDefinition{Name: "bogus", Implementation: "carrier-pigeon"}

	_, err := New(def, testLogger())
	require.ErrorIs(t, err, common.ErrUnknownImplementation)
}

func TestQBittorrentAdd(t *testing.T) {
	var loggedIn, added bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/auth/login":
			loggedIn = true
			fmt.Fprint(w, "Ok.")
		case "/api/v2/torrents/add":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "https://tracker.example/dl/1.torrent", r.PostForm.Get("urls"))
			require.Equal(t, "grabarr", r.PostForm.Get("category"))
			added = true
			fmt.Fprint(w, "Ok.")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "qbt",
		Implementation: "qbittorrent",
		Protocol:       entity.ProtocolTorrent,
		Settings:       serverSettings(t, server, `, "username": "admin", "password": "secret"`),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)
	require.Equal(t, entity.ProtocolTorrent, client.Protocol())

	id, err := client.Add(context.Background(), &entity.ReleaseCandidate{
		GUID:        "release-guid-1",
		Title:       "Baldurs.Gate.3-RELOADED",
		DownloadURL: "https://tracker.example/dl/1.torrent",
	})
	require.NoError(t, err)
	require.Equal(t, "release-guid-1", id)
	require.True(t, loggedIn)
	require.True(t, added)
}

func TestQBittorrentAddWithoutGUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Ok.")
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "qbt",
		Implementation: "qbittorrent",
		Settings:       serverSettings(t, server, ""),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	id, err := client.Add(context.Background(), &entity.ReleaseCandidate{
		Title:       "No.Guid-GRP",
		DownloadURL: "https://tracker.example/dl/2.torrent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id, "a download id must be generated when the release has no GUID")
}

func TestQBittorrentLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Fails.")
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "qbt",
		Implementation: "qbittorrent",
		Settings:       serverSettings(t, server, `, "username": "admin", "password": "wrong"`),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	_, err = client.Add(context.Background(), &entity.ReleaseCandidate{DownloadURL: "x"})
	require.Error(t, err)
}

func TestQBittorrentItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/torrents/info", r.URL.Path)
		fmt.Fprint(w, `[
			{"hash": "aaa", "name": "Game.One-GRP", "total_size": 1000, "completed": 1000,
			 "content_path": "/downloads/Game.One-GRP", "category": "grabarr", "state": "stalledUP"},
			{"hash": "bbb", "name": "Game.Two-GRP", "total_size": 2000, "completed": 500,
			 "content_path": "/downloads/Game.Two-GRP", "category": "grabarr", "state": "downloading"},
			{"hash": "ccc", "name": "Game.Three-GRP", "total_size": 3000, "completed": 0,
			 "content_path": "", "category": "grabarr", "state": "missingFiles"}
		]`)
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "qbt",
		Implementation: "qbittorrent",
		Settings:       serverSettings(t, server, ""),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	items, err := client.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "aaa", items[0].DownloadID)
	require.Equal(t, entity.DownloadItemStatusCompleted, items[0].Status)
	require.Equal(t, "/downloads/Game.One-GRP", items[0].OutputPath)
	require.Equal(t, int64(0), items[0].RemainingSize)

	require.Equal(t, entity.DownloadItemStatusDownloading, items[1].Status)
	require.Equal(t, int64(1500), items[1].RemainingSize)

	require.Equal(t, entity.DownloadItemStatusFailed, items[2].Status)
	require.Equal(t, entity.ProtocolTorrent, items[2].Protocol)
}

func TestMapQBittorrentState(t *testing.T) {
	testCases := []struct {
		state    string
		expected entity.DownloadItemStatus
	}{
		{"uploading", entity.DownloadItemStatusCompleted},
		{"stalledUP", entity.DownloadItemStatusCompleted},
		{"pausedUP", entity.DownloadItemStatusCompleted},
		{"queuedUP", entity.DownloadItemStatusCompleted},
		{"forcedUP", entity.DownloadItemStatusCompleted},
		{"downloading", entity.DownloadItemStatusDownloading},
		{"stalledDL", entity.DownloadItemStatusDownloading},
		{"metaDL", entity.DownloadItemStatusDownloading},
		{"pausedDL", entity.DownloadItemStatusPaused},
		{"queuedDL", entity.DownloadItemStatusPaused},
		{"error", entity.DownloadItemStatusFailed},
		{"missingFiles", entity.DownloadItemStatusFailed},
		{"checkingUP", entity.DownloadItemStatusQueued},
		{"", entity.DownloadItemStatusQueued},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, mapQBittorrentState(tc.state), "state %q", tc.state)
	}
}

func TestSabnzbdAdd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "addurl", r.URL.Query().Get("mode"))
		require.Equal(t, "https://indexer.example/getnzb/42.nzb", r.URL.Query().Get("name"))
		require.Equal(t, "secret", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{"status": true, "nzo_ids": ["SABnzbd_nzo_1"]}`)
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "sab",
		Implementation: "sabnzbd",
		Protocol:       entity.ProtocolUsenet,
		Settings:       serverSettings(t, server, `, "apiKey": "secret"`),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)
	require.Equal(t, entity.ProtocolUsenet, client.Protocol())

	id, err := client.Add(context.Background(), &entity.ReleaseCandidate{
		Title:       "Cyberpunk_2077_v1.6-GOG",
		DownloadURL: "https://indexer.example/getnzb/42.nzb",
	})
	require.NoError(t, err)
	require.Equal(t, "SABnzbd_nzo_1", id)
}

func TestSabnzbdAddRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": false, "error": "no api key"}`)
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "sab",
		Implementation: "sabnzbd",
		Settings:       serverSettings(t, server, ""),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	_, err = client.Add(context.Background(), &entity.ReleaseCandidate{DownloadURL: "x"})
	require.ErrorContains(t, err, "no api key")
}

func TestSabnzbdItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mode") {
		case "queue":
			fmt.Fprint(w, `{"queue": {"slots": [
				{"nzo_id": "nzo_1", "filename": "Game.One-GRP", "mb": "1024.00", "mbleft": "512.00",
				 "cat": "grabarr", "status": "Downloading"},
				{"nzo_id": "nzo_2", "filename": "Game.Two-GRP", "mb": "2048.00", "mbleft": "2048.00",
				 "cat": "grabarr", "status": "Paused"}
			]}}`)
		case "history":
			fmt.Fprint(w, `{"history": {"slots": [
				{"nzo_id": "nzo_3", "name": "Game.Three-GRP", "bytes": 3000000,
				 "storage": "/downloads/complete/Game.Three-GRP", "category": "grabarr", "status": "Completed"},
				{"nzo_id": "nzo_4", "name": "Game.Four-GRP", "bytes": 0,
				 "storage": "", "category": "grabarr", "status": "Failed", "fail_message": "out of retention"}
			]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "sab",
		Implementation: "sabnzbd",
		Settings:       serverSettings(t, server, ""),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	items, err := client.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	require.Equal(t, "nzo_1", items[0].DownloadID)
	require.Equal(t, entity.DownloadItemStatusDownloading, items[0].Status)
	require.Equal(t, int64(1024*1024*1024), items[0].TotalSize)
	require.Equal(t, int64(512*1024*1024), items[0].RemainingSize)

	require.Equal(t, entity.DownloadItemStatusPaused, items[1].Status)

	require.Equal(t, entity.DownloadItemStatusCompleted, items[2].Status)
	require.Equal(t, "/downloads/complete/Game.Three-GRP", items[2].OutputPath)

	require.Equal(t, entity.DownloadItemStatusFailed, items[3].Status)
	require.Equal(t, "out of retention", items[3].Message)
}

func TestSabnzbdItemsHistoryUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mode") {
		case "queue":
			fmt.Fprint(w, `{"queue": {"slots": [
				{"nzo_id": "nzo_1", "filename": "Game.One-GRP", "mb": "10", "mbleft": "5",
				 "cat": "grabarr", "status": "Downloading"}
			]}}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	def := &entity.DownloadClientDefinition{
		Name:           "sab",
		Implementation: "sabnzbd",
		Settings:       serverSettings(t, server, ""),
	}

	client, err := New(def, testLogger())
	require.NoError(t, err)

	items, err := client.Items(context.Background())
	require.NoError(t, err, "queue items must survive a history fetch failure")
	require.Len(t, items, 1)
}
