package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/grabarr/grabarr/internal/adapter/disk"
	"github.com/grabarr/grabarr/internal/entity"
	"github.com/grabarr/grabarr/internal/gamefile"
)

type GameStore interface {
	Get(ctx context.Context, id int64) (*entity.Game, error)
	Update(ctx context.Context, game *entity.Game) error
}

type GameFileStore interface {
	Insert(ctx context.Context, file *entity.GameFile) (int64, error)
}

type Transferer interface {
	TransferFile(sourcePath, targetPath string, mode disk.TransferMode) (disk.TransferMode, error)
}

type ImportService struct {
	games    GameStore
	files    GameFileStore
	transfer Transferer
	fs       afero.Fs
	log      *slog.Logger
}

func New(games GameStore, files GameFileStore, transfer Transferer, fs afero.Fs, log *slog.Logger) *ImportService {
	return &ImportService{
		games:    games,
		files:    files,
		transfer: transfer,
		fs:       fs,
		log:      log.With(slog.String("service", "importer")),
	}
}

func fail(r *entity.ImportResult, msg string) *entity.ImportResult {
	r.Errors = append(r.Errors, msg)

	return r
}

// Import moves one file into the game's library folder. Every failed step
// records a message in Errors and stops the import; a failure never leaves
// partial library state behind.
func (s *ImportService) Import(ctx context.Context, sourcePath string, gameID int64, mode disk.TransferMode) *entity.ImportResult {
	result := &entity.ImportResult{SourcePath: sourcePath}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return fail(result, fmt.Sprintf("cannot find game %d: %v", gameID, err))
	}
	result.Game = game

	if exists, err := afero.Exists(s.fs, sourcePath); err != nil || !exists {
		return fail(result, fmt.Sprintf("source file does not exist: %s", sourcePath))
	}

	fileType := gamefile.DetectFileType(sourcePath)
	if fileType == gamefile.FileTypeUnknown {
		return fail(result, fmt.Sprintf("not a recognized game file: %s", sourcePath))
	}

	if game.RootFolderPath == "" {
		return fail(result, fmt.Sprintf("game %q has no root folder configured", game.Title))
	}

	folder := buildGameFolder(game)
	fileName := buildGameFileName(game, sourcePath)
	targetPath := filepath.Join(game.RootFolderPath, folder, fileName)

	appliedMode, err := s.transfer.TransferFile(sourcePath, targetPath, mode)
	if err != nil {
		return fail(result, fmt.Sprintf("transfer failed: %v", err))
	}

	s.log.Info("File transferred",
		slog.String("source", sourcePath),
		slog.String("target", targetPath),
		slog.String("mode", appliedMode.String()))

	var size int64
	if info, err := s.fs.Stat(targetPath); err == nil {
		size = info.Size()
	}

	file := &entity.GameFile{
		GameID:       game.ID,
		RelativePath: filepath.Join(folder, fileName),
		Size:         size,
		Platform:     game.Platform,
		AddedAt:      time.Now().UTC(),
	}

	if _, err := s.files.Insert(ctx, file); err != nil {
		return fail(result, fmt.Sprintf("cannot record game file: %v", err))
	}

	game.GameFileID = file.ID
	game.Path = filepath.Join(game.RootFolderPath, folder)
	if err := s.games.Update(ctx, game); err != nil {
		return fail(result, fmt.Sprintf("cannot update game: %v", err))
	}

	result.Success = true
	result.ImportedFile = file
	result.DestinationPath = targetPath

	return result
}

// ImportFolder scans folderPath recursively and imports every recognized
// game file. A missing or empty folder yields an empty result list, and one
// file's failure never stops the remaining files.
func (s *ImportService) ImportFolder(ctx context.Context, folderPath string, gameID int64, mode disk.TransferMode) []*entity.ImportResult {
	results := make([]*entity.ImportResult, 0)
	for _, path := range gamefile.ScanDirectory(s.fs, folderPath) {
		results = append(results, s.Import(ctx, path, gameID, mode))
	}

	return results
}
