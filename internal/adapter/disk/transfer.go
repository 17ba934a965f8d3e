// Package disk performs single-file relocations for the import pipeline.
package disk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// TransferMode is a flag set: HardLinkOrCopy means try a hardlink first and
// fall back to a byte copy.
type TransferMode int

const (
	TransferModeCopy TransferMode = 1 << iota
	TransferModeMove
	TransferModeHardLink

	TransferModeHardLinkOrCopy = TransferModeHardLink | TransferModeCopy
)

func (m TransferMode) String() string {
	switch m {
	case TransferModeCopy:
		return "Copy"
	case TransferModeMove:
		return "Move"
	case TransferModeHardLink:
		return "HardLink"
	case TransferModeHardLinkOrCopy:
		return "HardLinkOrCopy"
	}

	return fmt.Sprintf("TransferMode(%d)", int(m))
}

var (
	ErrEmptyPath      = fmt.Errorf("transfer path cannot be empty")
	ErrNoModeFlag     = fmt.Errorf("no recognized transfer mode flag")
	ErrHardLinkFailed = fmt.Errorf("hardlink failed")
)

// LinkFunc creates a hardlink. It is injected so the cross-device and
// unsupported-filesystem fallbacks are testable without a real disk.
type LinkFunc func(oldname, newname string) error

type TransferService struct {
	fs   afero.Fs
	link LinkFunc
	log  *slog.Logger
}

func NewTransferService(log *slog.Logger) *TransferService {
	return NewTransferServiceWithFS(afero.NewOsFs(), os.Link, log)
}

func NewTransferServiceWithFS(fs afero.Fs, link LinkFunc, log *slog.Logger) *TransferService {
	return &TransferService{
		fs:   fs,
		link: link,
		log:  log.With(slog.String("item", "TransferService")),
	}
}

// TransferFile relocates sourcePath to targetPath and returns the mode that
// actually took effect, so callers can tell whether a hardlink request ended
// up as a copy. An existing target file is overwritten. Copy and a hardlink
// (or its copy fallback) leave the source intact; Move removes it.
func (s *TransferService) TransferFile(sourcePath, targetPath string, mode TransferMode) (TransferMode, error) {
	if sourcePath == "" || targetPath == "" {
		return 0, ErrEmptyPath
	}

	if exists, err := afero.Exists(s.fs, sourcePath); err != nil {
		return 0, fmt.Errorf("cannot stat source %s: %w", sourcePath, err)
	} else if !exists {
		return 0, fmt.Errorf("source file %s: %w", sourcePath, os.ErrNotExist)
	}

	if dir := filepath.Dir(targetPath); dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("cannot create target directory: %w", err)
		}
	}

	if exists, _ := afero.Exists(s.fs, targetPath); exists {
		if err := s.fs.Remove(targetPath); err != nil {
			return 0, fmt.Errorf("cannot remove existing target %s: %w", targetPath, err)
		}
	}

	if mode&TransferModeHardLink != 0 {
		if err := s.link(sourcePath, targetPath); err == nil {
			s.log.Debug("Hardlinked file", slog.String("source", sourcePath), slog.String("target", targetPath))

			return TransferModeHardLink, nil
		} else {
			s.log.Debug("Hardlink failed, falling back", slog.String("source", sourcePath), slog.Any("error", err))
		}

		if mode&TransferModeCopy != 0 {
			if err := s.copyFile(sourcePath, targetPath); err != nil {
				return 0, err
			}

			return TransferModeCopy, nil
		}

		return 0, fmt.Errorf("cannot link %s to %s: %w", sourcePath, targetPath, ErrHardLinkFailed)
	}

	if mode&TransferModeCopy != 0 {
		if err := s.copyFile(sourcePath, targetPath); err != nil {
			return 0, err
		}

		return TransferModeCopy, nil
	}

	if mode&TransferModeMove != 0 {
		if err := s.moveFile(sourcePath, targetPath); err != nil {
			return 0, err
		}

		return TransferModeMove, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrNoModeFlag, mode)
}

func (s *TransferService) copyFile(sourcePath, targetPath string) error {
	s.log.Debug("Copying file", slog.String("source", sourcePath), slog.String("target", targetPath))

	src, err := s.fs.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("cannot open source %s: %w", sourcePath, err)
	}
	defer src.Close()

	dst, err := s.fs.Create(targetPath)
	if err != nil {
		return fmt.Errorf("cannot create target %s: %w", targetPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()

		return fmt.Errorf("cannot copy %s to %s: %w", sourcePath, targetPath, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("cannot close target %s: %w", targetPath, err)
	}

	return nil
}

func (s *TransferService) moveFile(sourcePath, targetPath string) error {
	s.log.Debug("Moving file", slog.String("source", sourcePath), slog.String("target", targetPath))

	if err := s.fs.Rename(sourcePath, targetPath); err == nil {
		return nil
	}

	// Rename fails across filesystems. Copy, then drop the source.
	if err := s.copyFile(sourcePath, targetPath); err != nil {
		return err
	}

	if err := s.fs.Remove(sourcePath); err != nil {
		return fmt.Errorf("cannot remove source %s after move: %w", sourcePath, err)
	}

	return nil
}
