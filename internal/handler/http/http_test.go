package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type stubSearch struct {
	releases []*entity.ReleaseCandidate
	err      error
	term     string
}

func (s *stubSearch) SearchAll(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error) {
	s.term = term

	return s.releases, s.err
}

type stubDispatch struct {
	downloadID string
	sendErr    error
	items      []*entity.DownloadQueueItem
}

func (s *stubDispatch) Send(ctx context.Context, release *entity.ReleaseCandidate, gameID int64, gameTitle string) (string, error) {
	return s.downloadID, s.sendErr
}

func (s *stubDispatch) GetQueue(ctx context.Context) ([]*entity.DownloadQueueItem, error) {
	return s.items, nil
}

type stubHistory struct {
	recs  []*entity.HistoryRecord
	limit int
}

func (s *stubHistory) Recent(ctx context.Context, limit int) ([]*entity.HistoryRecord, error) {
	s.limit = limit

	return s.recs, nil
}

type stubLibrary struct {
	games map[int64]*entity.Game
	added *entity.Game
}

func (s *stubLibrary) Get(ctx context.Context, id int64) (*entity.Game, error) {
	game, ok := s.games[id]
	if !ok {
		return nil, common.ErrGameNotFoundError
	}

	return game, nil
}

func (s *stubLibrary) All(ctx context.Context) ([]*entity.Game, error) {
	var games []*entity.Game
	for _, g := range s.games {
		games = append(games, g)
	}

	return games, nil
}

func (s *stubLibrary) Add(ctx context.Context, game *entity.Game) (int64, error) {
	s.added = game

	return 42, nil
}

func (s *stubLibrary) Delete(ctx context.Context, id int64) error {
	if _, ok := s.games[id]; !ok {
		return common.ErrGameNotFoundError
	}
	delete(s.games, id)

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSearchHandler(t *testing.T) {
	srv := &stubSearch{releases: []*entity.ReleaseCandidate{
		{Title: "Game.One-GRP", Seeders: 10},
	}}
	handler := NewSearchHandler(srv, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/search?term=game+one", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "game one", srv.term)

	var got []*entity.ReleaseCandidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Game.One-GRP", got[0].Title)
}

func TestSearchHandlerMissingTerm(t *testing.T) {
	handler := NewSearchHandler(&stubSearch{}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrabHandler(t *testing.T) {
	handler := NewGrabHandler(&stubDispatch{downloadID: "id-1"}, testLogger())

	body := `{"release": {"Title": "Game.One-GRP", "Protocol": "torrent"}, "gameId": 7, "gameTitle": "Game One"}`
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/grab", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "id-1", got["downloadId"])
}

func TestGrabHandlerBadBody(t *testing.T) {
	handler := NewGrabHandler(&stubDispatch{}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/grab", strings.NewReader("{broken")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrabHandlerAllClientsFailed(t *testing.T) {
	dispatch := &stubDispatch{sendErr: fmt.Errorf("%w: Game.One-GRP", common.ErrAllDownloadClientsFailed)}
	handler := NewGrabHandler(dispatch, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/grab", strings.NewReader(`{"release": {}}`)))

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestQueueHandler(t *testing.T) {
	dispatch := &stubDispatch{items: []*entity.DownloadQueueItem{
		{DownloadID: "id-1", Status: entity.DownloadItemStatusDownloading},
	}}
	handler := NewQueueHandler(dispatch, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/queue", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []*entity.DownloadQueueItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
}

func TestHistoryHandlerLimit(t *testing.T) {
	history := &stubHistory{}
	handler := NewHistoryHandler(history, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, history.limit)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, defaultHistoryLimit, history.limit)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameHandlers(t *testing.T) {
	library := &stubLibrary{games: map[int64]*entity.Game{
		1: {ID: 1, Title: "The Witcher 3"},
	}}

	mux := http.NewServeMux()
	mux.Handle("GET /api/games/{id}", NewGameHandler(library, testLogger()))
	mux.Handle("DELETE /api/games/{id}", NewDeleteGameHandler(library, testLogger()))
	mux.Handle("POST /api/games", NewAddGameHandler(library, testLogger()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var game entity.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
	require.Equal(t, "The Witcher 3", game.Title)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/99", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/games",
		strings.NewReader(`{"Title": "Hollow Knight", "Platform": "PC"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hollow Knight", library.added.Title)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/games/1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/games/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
