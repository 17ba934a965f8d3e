package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

const defaultHistoryLimit = 50

type SearchService interface {
	SearchAll(ctx context.Context, term string) ([]*entity.ReleaseCandidate, error)
}

type DispatchService interface {
	Send(ctx context.Context, release *entity.ReleaseCandidate, gameID int64, gameTitle string) (string, error)
	GetQueue(ctx context.Context) ([]*entity.DownloadQueueItem, error)
}

type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]*entity.HistoryRecord, error)
}

type LibraryService interface {
	Get(ctx context.Context, id int64) (*entity.Game, error)
	All(ctx context.Context) ([]*entity.Game, error)
	Add(ctx context.Context, game *entity.Game) (int64, error)
	Delete(ctx context.Context, id int64) error
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func NewSearchHandler(srv SearchService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SearchHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		if term == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		releases, err := srv.SearchAll(r.Context(), term)
		if err != nil {
			log.Error("Search failed", slog.String("term", term), slog.Any("error", err))
			http.Error(w, "Cannot search", http.StatusInternalServerError)

			return
		}

		writeJSON(w, releases)
	}
}

type grabRequest struct {
	Release   entity.ReleaseCandidate `json:"release"`
	GameID    int64                   `json:"gameId"`
	GameTitle string                  `json:"gameTitle"`
}

func NewGrabHandler(srv DispatchService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "GrabHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req grabRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		downloadID, err := srv.Send(r.Context(), &req.Release, req.GameID, req.GameTitle)
		if err != nil {
			log.Error("Grab failed", slog.String("release", req.Release.Title), slog.Any("error", err))

			switch {
			case errors.Is(err, common.ErrNoDownloadClientError),
				errors.Is(err, common.ErrAllDownloadClientsFailed):
				http.Error(w, err.Error(), http.StatusBadGateway)
			default:
				http.Error(w, "Cannot grab release", http.StatusInternalServerError)
			}

			return
		}

		writeJSON(w, map[string]string{"downloadId": downloadID})
	}
}

func NewQueueHandler(srv DispatchService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "QueueHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		items, err := srv.GetQueue(r.Context())
		if err != nil {
			log.Error("Cannot fetch queue", slog.Any("error", err))
			http.Error(w, "Cannot fetch queue", http.StatusInternalServerError)

			return
		}

		writeJSON(w, items)
	}
}

func NewHistoryHandler(srv HistoryService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "HistoryHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "Bad request", http.StatusBadRequest)

				return
			}
			limit = n
		}

		recs, err := srv.Recent(r.Context(), limit)
		if err != nil {
			log.Error("Cannot fetch history", slog.Any("error", err))
			http.Error(w, "Cannot fetch history", http.StatusInternalServerError)

			return
		}

		writeJSON(w, recs)
	}
}

func NewGamesHandler(srv LibraryService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "GamesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		games, err := srv.All(r.Context())
		if err != nil {
			log.Error("Cannot list games", slog.Any("error", err))
			http.Error(w, "Cannot list games", http.StatusInternalServerError)

			return
		}

		writeJSON(w, games)
	}
}

func NewGameHandler(srv LibraryService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "GameHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		game, err := srv.Get(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrGameNotFoundError):
				http.Error(w, "Cannot find game", http.StatusNotFound)
			default:
				http.Error(w, "Cannot get game", http.StatusInternalServerError)
			}

			return
		}

		writeJSON(w, game)
	}
}

func NewAddGameHandler(srv LibraryService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "AddGameHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var game entity.Game
		if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		id, err := srv.Add(r.Context(), &game)
		if err != nil {
			log.Error("Cannot add game", slog.String("title", game.Title), slog.Any("error", err))
			http.Error(w, "Cannot add game", http.StatusInternalServerError)

			return
		}

		writeJSON(w, map[string]int64{"id": id})
	}
}

func NewDeleteGameHandler(srv LibraryService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteGameHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		if err := srv.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, common.ErrGameNotFoundError):
				http.Error(w, "Cannot find game", http.StatusNotFound)
			default:
				log.Error("Cannot delete game", slog.Int64("id", id), slog.Any("error", err))
				http.Error(w, "Cannot delete game", http.StatusInternalServerError)
			}

			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
