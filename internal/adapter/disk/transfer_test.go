package disk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestService(fs afero.Fs, link LinkFunc) *TransferService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewTransferServiceWithFS(fs, link, log)
}

// memLink emulates a hardlink on the in-memory fs by copying.
func memLink(fs afero.Fs) LinkFunc {
	return func(oldname, newname string) error {
		data, err := afero.ReadFile(fs, oldname)
		if err != nil {
			return err
		}

		return afero.WriteFile(fs, newname, data, 0o644)
	}
}

func TestTransferFileCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	srv := newTestService(fs, memLink(fs))

	mode, err := srv.TransferFile("/src/game.iso", "/dst/sub/game.iso", TransferModeCopy)
	require.NoError(t, err)
	require.Equal(t, TransferModeCopy, mode)

	data, err := afero.ReadFile(fs, "/dst/sub/game.iso")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	exists, err := afero.Exists(fs, "/src/game.iso")
	require.NoError(t, err)
	require.True(t, exists, "copy must leave the source intact")
}

func TestTransferFileMove(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	srv := newTestService(fs, memLink(fs))

	mode, err := srv.TransferFile("/src/game.iso", "/dst/game.iso", TransferModeMove)
	require.NoError(t, err)
	require.Equal(t, TransferModeMove, mode)

	data, err := afero.ReadFile(fs, "/dst/game.iso")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	exists, err := afero.Exists(fs, "/src/game.iso")
	require.NoError(t, err)
	require.False(t, exists, "move must remove the source")
}

func TestTransferFileHardLink(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	srv := newTestService(fs, memLink(fs))

	mode, err := srv.TransferFile("/src/game.iso", "/dst/game.iso", TransferModeHardLink)
	require.NoError(t, err)
	require.Equal(t, TransferModeHardLink, mode)
}

func TestTransferFileHardLinkFallsBackToCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	failingLink := func(oldname, newname string) error {
		return fmt.Errorf("link not supported")
	}
	srv := newTestService(fs, failingLink)

	mode, err := srv.TransferFile("/src/game.iso", "/dst/game.iso", TransferModeHardLinkOrCopy)
	require.NoError(t, err)
	require.Equal(t, TransferModeCopy, mode)

	exists, err := afero.Exists(fs, "/src/game.iso")
	require.NoError(t, err)
	require.True(t, exists, "fallback copy must leave the source intact")

	data, err := afero.ReadFile(fs, "/dst/game.iso")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

func TestTransferFileHardLinkOnlyFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	failingLink := func(oldname, newname string) error {
		return fmt.Errorf("link not supported")
	}
	srv := newTestService(fs, failingLink)

	_, err := srv.TransferFile("/src/game.iso", "/dst/game.iso", TransferModeHardLink)
	require.ErrorIs(t, err, ErrHardLinkFailed)
}

func TestTransferFileOverwritesTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("new"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/dst/game.iso", []byte("old"), 0o644))

	srv := newTestService(fs, memLink(fs))

	_, err := srv.TransferFile("/src/game.iso", "/dst/game.iso", TransferModeCopy)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/dst/game.iso")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), data)
}

func TestTransferFileMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	srv := newTestService(fs, memLink(fs))

	for _, mode := range []TransferMode{
		TransferModeCopy, TransferModeMove, TransferModeHardLink, TransferModeHardLinkOrCopy,
	} {
		t.Run(mode.String(), func(t *testing.T) {
			_, err := srv.TransferFile("/missing.iso", "/dst/game.iso", mode)
			require.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestTransferFileInvalidArguments(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/game.iso", []byte("payload"), 0o644))

	srv := newTestService(fs, memLink(fs))

	_, err := srv.TransferFile("", "/dst/game.iso", TransferModeCopy)
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = srv.TransferFile("/src/game.iso", "", TransferModeCopy)
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = srv.TransferFile("/src/game.iso", "/dst/game.iso", 0)
	require.ErrorIs(t, err, ErrNoModeFlag)
}
