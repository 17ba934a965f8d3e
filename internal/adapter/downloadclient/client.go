// Package downloadclient implements the protocol clients that submit
// releases to external download programs and read back their queues.
package downloadclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

const defaultTimeout = 30 * time.Second

// Client is one configured download program.
type Client interface {
	Name() string
	Protocol() entity.Protocol

	// Add submits a release and returns the client-assigned download id.
	Add(ctx context.Context, release *entity.ReleaseCandidate) (string, error)

	// Items returns the client's queue normalized into the unified view.
	Items(ctx context.Context) ([]*entity.DownloadQueueItem, error)
}

// New constructs the protocol client for a definition. Unknown implementation
// kinds yield common.ErrUnknownImplementation; the dispatcher skips those
// with a warning.
func New(def *entity.DownloadClientDefinition, log *slog.Logger) (Client, error) {
	switch strings.ToLower(def.Implementation) {
	case "qbittorrent":
		return newQBittorrent(def, log)
	case "sabnzbd":
		return newSabnzbd(def, log)
	}

	return nil, fmt.Errorf("download client implementation %q: %w", def.Implementation, common.ErrUnknownImplementation)
}
