package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type Client interface {
	Name() string
	Protocol() entity.Protocol
	Add(ctx context.Context, release *entity.ReleaseCandidate) (string, error)
	Items(ctx context.Context) ([]*entity.DownloadQueueItem, error)
}

type DefinitionStore interface {
	All(ctx context.Context) ([]*entity.DownloadClientDefinition, error)
	Get(ctx context.Context, id int64) (*entity.DownloadClientDefinition, error)
	Insert(ctx context.Context, def *entity.DownloadClientDefinition) (int64, error)
	Update(ctx context.Context, def *entity.DownloadClientDefinition) error
	Delete(ctx context.Context, id int64) error
}

type TrackingStore interface {
	Insert(ctx context.Context, tr *entity.DownloadTracking) (int64, error)
}

type HistoryRecorder interface {
	RecordEvent(ctx context.Context, rec *entity.HistoryRecord)
}

// Factory builds a concrete download client from its stored definition.
type Factory func(def *entity.DownloadClientDefinition) (Client, error)

type DispatchService struct {
	defs     DefinitionStore
	tracking TrackingStore
	history  HistoryRecorder
	factory  Factory
	log      *slog.Logger
}

func New(defs DefinitionStore, tracking TrackingStore, history HistoryRecorder,
	factory Factory, log *slog.Logger) *DispatchService {
	return &DispatchService{
		defs:     defs,
		tracking: tracking,
		history:  history,
		factory:  factory,
		log:      log.With(slog.String("service", "dispatch")),
	}
}

// Send hands the release to the first enabled client that accepts it,
// trying clients of the matching protocol in priority order. The returned
// id is the client-reported download id used for completion tracking.
func (s *DispatchService) Send(ctx context.Context, release *entity.ReleaseCandidate, gameID int64, gameTitle string) (string, error) {
	defs, err := s.defs.All(ctx)
	if err != nil {
		return "", err
	}

	var candidates []*entity.DownloadClientDefinition
	for _, def := range defs {
		if def.Enable && def.Protocol == release.Protocol {
			candidates = append(candidates, def)
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w for protocol %q", common.ErrNoDownloadClientError, release.Protocol)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	for _, def := range candidates {
		client, err := s.factory(def)
		if err != nil {
			s.log.Warn("Cannot build download client",
				slog.String("client", def.Name), slog.Any("error", err))
			continue
		}

		downloadID, err := client.Add(ctx, release)
		if err != nil {
			s.log.Warn("Download client rejected release",
				slog.String("client", def.Name),
				slog.String("release", release.Title), slog.Any("error", err))
			continue
		}

		s.log.Info("Release sent to download client",
			slog.String("client", def.Name),
			slog.String("release", release.Title),
			slog.String("downloadId", downloadID))

		if gameID > 0 {
			_, err = s.tracking.Insert(ctx, &entity.DownloadTracking{
				DownloadID:  downloadID,
				GameID:      gameID,
				GameTitle:   gameTitle,
				SourceTitle: release.Title,
				AddedAt:     time.Now().UTC(),
			})
			if err != nil {
				return "", fmt.Errorf("cannot track download: %w", err)
			}
		}

		s.history.RecordEvent(ctx, &entity.HistoryRecord{
			EventType:   entity.HistoryEventGrabbed,
			GameID:      gameID,
			GameTitle:   gameTitle,
			SourceTitle: release.Title,
			Date:        time.Now().UTC(),
			Data:        release.Indexer,
		})

		return downloadID, nil
	}

	return "", fmt.Errorf("%w: %s", common.ErrAllDownloadClientsFailed, release.Title)
}

// GetQueue merges the current items of every enabled client. A client
// that cannot be reached is logged and skipped.
func (s *DispatchService) GetQueue(ctx context.Context) ([]*entity.DownloadQueueItem, error) {
	defs, err := s.defs.All(ctx)
	if err != nil {
		return nil, err
	}

	var queue []*entity.DownloadQueueItem
	for _, def := range defs {
		if !def.Enable {
			continue
		}

		client, err := s.factory(def)
		if err != nil {
			s.log.Warn("Cannot build download client",
				slog.String("client", def.Name), slog.Any("error", err))
			continue
		}

		items, err := client.Items(ctx)
		if err != nil {
			s.log.Warn("Cannot fetch download client items",
				slog.String("client", def.Name), slog.Any("error", err))
			continue
		}

		queue = append(queue, items...)
	}

	return queue, nil
}

func (s *DispatchService) Clients(ctx context.Context) ([]*entity.DownloadClientDefinition, error) {
	return s.defs.All(ctx)
}

func (s *DispatchService) GetClient(ctx context.Context, id int64) (*entity.DownloadClientDefinition, error) {
	return s.defs.Get(ctx, id)
}

func (s *DispatchService) AddClient(ctx context.Context, def *entity.DownloadClientDefinition) (int64, error) {
	return s.defs.Insert(ctx, def)
}

func (s *DispatchService) UpdateClient(ctx context.Context, def *entity.DownloadClientDefinition) error {
	return s.defs.Update(ctx, def)
}

func (s *DispatchService) DeleteClient(ctx context.Context, id int64) error {
	return s.defs.Delete(ctx, id)
}
