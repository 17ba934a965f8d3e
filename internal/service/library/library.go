package library

import (
	"context"
	"log/slog"
	"time"

	"github.com/grabarr/grabarr/internal/entity"
)

type GameStore interface {
	Get(ctx context.Context, id int64) (*entity.Game, error)
	All(ctx context.Context) ([]*entity.Game, error)
	Insert(ctx context.Context, game *entity.Game) (int64, error)
	Update(ctx context.Context, game *entity.Game) error
	Delete(ctx context.Context, id int64) error
}

type GameFileStore interface {
	FindByGameID(ctx context.Context, gameID int64) ([]*entity.GameFile, error)
}

type HistoryRecorder interface {
	RecordEvent(ctx context.Context, rec *entity.HistoryRecord)
}

type LibraryService struct {
	games   GameStore
	files   GameFileStore
	history HistoryRecorder
	log     *slog.Logger
}

func New(games GameStore, files GameFileStore, history HistoryRecorder, log *slog.Logger) *LibraryService {
	return &LibraryService{
		games:   games,
		files:   files,
		history: history,
		log:     log.With(slog.String("service", "library")),
	}
}

func (s *LibraryService) Get(ctx context.Context, id int64) (*entity.Game, error) {
	return s.games.Get(ctx, id)
}

func (s *LibraryService) All(ctx context.Context) ([]*entity.Game, error) {
	return s.games.All(ctx)
}

func (s *LibraryService) Files(ctx context.Context, gameID int64) ([]*entity.GameFile, error) {
	return s.files.FindByGameID(ctx, gameID)
}

func (s *LibraryService) Add(ctx context.Context, game *entity.Game) (int64, error) {
	if game.AddedAt.IsZero() {
		game.AddedAt = time.Now().UTC()
	}

	id, err := s.games.Insert(ctx, game)
	if err != nil {
		return 0, err
	}

	s.log.Info("Game added", slog.String("title", game.Title), slog.Int64("id", id))

	return id, nil
}

func (s *LibraryService) Update(ctx context.Context, game *entity.Game) error {
	return s.games.Update(ctx, game)
}

func (s *LibraryService) Delete(ctx context.Context, id int64) error {
	game, err := s.games.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}

	s.history.RecordEvent(ctx, &entity.HistoryRecord{
		EventType: entity.HistoryEventDeleted,
		GameID:    game.ID,
		GameTitle: game.Title,
		Date:      time.Now().UTC(),
	})

	return nil
}
