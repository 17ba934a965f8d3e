// Package job holds the background loops driving the pipeline.
package job

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/grabarr/grabarr/internal/adapter/disk"
	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type QueueSource interface {
	GetQueue(ctx context.Context) ([]*entity.DownloadQueueItem, error)
}

type TrackingStore interface {
	FindByDownloadID(ctx context.Context, downloadID string) (*entity.DownloadTracking, error)
	Delete(ctx context.Context, id int64) error
}

type Importer interface {
	Import(ctx context.Context, sourcePath string, gameID int64, mode disk.TransferMode) *entity.ImportResult
	ImportFolder(ctx context.Context, folderPath string, gameID int64, mode disk.TransferMode) []*entity.ImportResult
}

type PathRemapper interface {
	RemapRemoteToLocal(ctx context.Context, host, remotePath string) (string, error)
}

type HistoryRecorder interface {
	RecordEvent(ctx context.Context, rec *entity.HistoryRecord)
}

// CompletedDownloadJob polls the merged download queue and imports finished,
// tracked items. A failed import keeps its tracking row so the next cycle
// retries it.
type CompletedDownloadJob struct {
	queue        QueueSource
	tracking     TrackingStore
	importer     Importer
	pathmap      PathRemapper
	history      HistoryRecorder
	fs           afero.Fs
	interval     time.Duration
	startupDelay time.Duration
	log          *slog.Logger
}

func NewCompletedDownloadJob(queue QueueSource, tracking TrackingStore, importer Importer,
	pathmap PathRemapper, history HistoryRecorder, fs afero.Fs,
	interval, startupDelay time.Duration, log *slog.Logger) *CompletedDownloadJob {
	return &CompletedDownloadJob{
		queue:        queue,
		tracking:     tracking,
		importer:     importer,
		pathmap:      pathmap,
		history:      history,
		fs:           fs,
		interval:     interval,
		startupDelay: startupDelay,
		log:          log.With(slog.String("job", "completedDownload")),
	}
}

// Run blocks until ctx is cancelled. Cancellation is observed only between
// items and between cycles, never mid-import.
func (j *CompletedDownloadJob) Run(ctx context.Context) {
	j.log.Info("Completed download job starting",
		slog.Duration("interval", j.interval),
		slog.Duration("startupDelay", j.startupDelay))

	select {
	case <-ctx.Done():
		return
	case <-time.After(j.startupDelay):
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.RunOnce(ctx)

		select {
		case <-ctx.Done():
			j.log.Info("Completed download job stopped")

			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single poll cycle. It is also invoked out of band on
// SIGUSR1 to force an immediate check.
func (j *CompletedDownloadJob) RunOnce(ctx context.Context) {
	items, err := j.queue.GetQueue(ctx)
	if err != nil {
		j.log.Warn("Cannot fetch download queue", slog.Any("error", err))

		return
	}

	for _, item := range items {
		if item.Status != entity.DownloadItemStatusCompleted {
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		j.processItem(ctx, item)
	}
}

func (j *CompletedDownloadJob) processItem(ctx context.Context, item *entity.DownloadQueueItem) {
	tracking, err := j.tracking.FindByDownloadID(ctx, item.DownloadID)
	if err != nil {
		if errors.Is(err, common.ErrTrackingNotFoundError) {
			// Added outside this system, leave it alone.
			return
		}

		j.log.Warn("Cannot look up download tracking",
			slog.String("downloadId", item.DownloadID), slog.Any("error", err))

		return
	}

	if item.OutputPath == "" {
		j.log.Warn("Completed download has no output path",
			slog.String("downloadId", item.DownloadID), slog.String("title", item.Title))

		return
	}

	localPath, err := j.pathmap.RemapRemoteToLocal(ctx, item.ClientHost, item.OutputPath)
	if err != nil {
		j.log.Warn("Cannot remap output path",
			slog.String("path", item.OutputPath), slog.Any("error", err))

		return
	}

	mode := disk.TransferModeMove
	if item.Protocol == entity.ProtocolTorrent {
		// Keep seeding the original.
		mode = disk.TransferModeHardLinkOrCopy
	}

	var results []*entity.ImportResult
	if isDir, _ := afero.IsDir(j.fs, localPath); isDir {
		results = j.importer.ImportFolder(ctx, localPath, tracking.GameID, mode)
	} else {
		results = []*entity.ImportResult{j.importer.Import(ctx, localPath, tracking.GameID, mode)}
	}

	var imported int
	var failures []string
	for _, res := range results {
		if res.Success {
			imported++
			continue
		}

		failures = append(failures, res.Errors...)
	}

	if imported > 0 {
		j.log.Info("Download imported",
			slog.String("title", tracking.GameTitle),
			slog.String("source", tracking.SourceTitle),
			slog.Int("files", imported))

		j.history.RecordEvent(ctx, &entity.HistoryRecord{
			EventType:   entity.HistoryEventImported,
			GameID:      tracking.GameID,
			GameTitle:   tracking.GameTitle,
			SourceTitle: tracking.SourceTitle,
			Date:        time.Now().UTC(),
		})

		if err := j.tracking.Delete(ctx, tracking.ID); err != nil {
			j.log.Error("Cannot delete download tracking",
				slog.Int64("id", tracking.ID), slog.Any("error", err))
		}

		return
	}

	// The tracking row stays so the next cycle retries the import.
	j.log.Warn("Import failed, will retry next cycle",
		slog.String("title", tracking.GameTitle),
		slog.String("path", localPath),
		slog.String("errors", strings.Join(failures, "; ")))

	j.history.RecordEvent(ctx, &entity.HistoryRecord{
		EventType:   entity.HistoryEventImportFailed,
		GameID:      tracking.GameID,
		GameTitle:   tracking.GameTitle,
		SourceTitle: tracking.SourceTitle,
		Date:        time.Now().UTC(),
		Data:        strings.Join(failures, "; "),
	})
}
