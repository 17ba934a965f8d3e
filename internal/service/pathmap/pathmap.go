package pathmap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/grabarr/grabarr/internal/entity"
)

type Store interface {
	All(ctx context.Context) ([]*entity.RemotePathMapping, error)
	Get(ctx context.Context, id int64) (*entity.RemotePathMapping, error)
	Insert(ctx context.Context, m *entity.RemotePathMapping) (int64, error)
	Update(ctx context.Context, m *entity.RemotePathMapping) error
	Delete(ctx context.Context, id int64) error
}

type PathMapService struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *PathMapService {
	return &PathMapService{
		store: store,
		log:   log.With(slog.String("service", "pathmap")),
	}
}

// ensureTrailingSeparator keeps prefix matching from treating /data/down as
// a prefix of /data/downloads.
func ensureTrailingSeparator(path string) string {
	if path == "" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return path
	}

	return path + "/"
}

// RemapRemoteToLocal rewrites a path reported by a download client running
// on another host into its local equivalent. When several mappings for the
// host match, the longest remote prefix wins. An unmatched path passes
// through unchanged.
func (s *PathMapService) RemapRemoteToLocal(ctx context.Context, host, remotePath string) (string, error) {
	mappings, err := s.store.All(ctx)
	if err != nil {
		return "", err
	}

	var best *entity.RemotePathMapping
	for _, m := range mappings {
		if !strings.EqualFold(m.Host, host) {
			continue
		}

		prefix := ensureTrailingSeparator(m.RemotePath)
		if !strings.HasPrefix(strings.ToLower(ensureTrailingSeparator(remotePath)), strings.ToLower(prefix)) {
			continue
		}

		if best == nil || len(m.RemotePath) > len(best.RemotePath) {
			best = m
		}
	}

	if best == nil {
		return remotePath, nil
	}

	prefix := ensureTrailingSeparator(best.RemotePath)
	rest := ensureTrailingSeparator(remotePath)[len(prefix):]
	local := ensureTrailingSeparator(best.LocalPath) + rest

	s.log.Debug("Remapped remote path",
		slog.String("host", host),
		slog.String("remote", remotePath),
		slog.String("local", local))

	return strings.TrimSuffix(local, "/"), nil
}

func (s *PathMapService) All(ctx context.Context) ([]*entity.RemotePathMapping, error) {
	return s.store.All(ctx)
}

func (s *PathMapService) Get(ctx context.Context, id int64) (*entity.RemotePathMapping, error) {
	return s.store.Get(ctx, id)
}

func (s *PathMapService) Add(ctx context.Context, m *entity.RemotePathMapping) (int64, error) {
	m.RemotePath = ensureTrailingSeparator(m.RemotePath)
	m.LocalPath = ensureTrailingSeparator(m.LocalPath)

	return s.store.Insert(ctx, m)
}

func (s *PathMapService) Update(ctx context.Context, m *entity.RemotePathMapping) error {
	m.RemotePath = ensureTrailingSeparator(m.RemotePath)
	m.LocalPath = ensureTrailingSeparator(m.LocalPath)

	return s.store.Update(ctx, m)
}

func (s *PathMapService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
