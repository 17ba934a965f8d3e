package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/grabarr/grabarr/internal/entity"
)

type Store interface {
	Insert(ctx context.Context, rec *entity.HistoryRecord) (int64, error)
	Recent(ctx context.Context, limit int) ([]*entity.HistoryRecord, error)
	FindByGameID(ctx context.Context, gameID int64) ([]*entity.HistoryRecord, error)
}

type HistoryService struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *HistoryService {
	return &HistoryService{
		store: store,
		log:   log.With(slog.String("service", "history")),
	}
}

// RecordEvent appends an audit record. It is fire-and-forget: a storage
// failure is logged and never surfaces to the pipeline that emitted it.
func (s *HistoryService) RecordEvent(ctx context.Context, rec *entity.HistoryRecord) {
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC()
	}

	if _, err := s.store.Insert(ctx, rec); err != nil {
		s.log.Error("Cannot record history event",
			slog.String("event", rec.EventType), slog.Any("error", err))
	}
}

func (s *HistoryService) Recent(ctx context.Context, limit int) ([]*entity.HistoryRecord, error) {
	return s.store.Recent(ctx, limit)
}

func (s *HistoryService) ByGame(ctx context.Context, gameID int64) ([]*entity.HistoryRecord, error) {
	return s.store.FindByGameID(ctx, gameID)
}
