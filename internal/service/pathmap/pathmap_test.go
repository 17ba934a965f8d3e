package pathmap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grabarr/grabarr/internal/entity"
)

type stubStore struct {
	mappings []*entity.RemotePathMapping
}

func (s *stubStore) All(ctx context.Context) ([]*entity.RemotePathMapping, error) {
	return s.mappings, nil
}

func (s *stubStore) Get(ctx context.Context, id int64) (*entity.RemotePathMapping, error) {
	return nil, nil
}

func (s *stubStore) Insert(ctx context.Context, m *entity.RemotePathMapping) (int64, error) {
	s.mappings = append(s.mappings, m)

	return int64(len(s.mappings)), nil
}

func (s *stubStore) Update(ctx context.Context, m *entity.RemotePathMapping) error {
	return nil
}

func (s *stubStore) Delete(ctx context.Context, id int64) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRemapRemoteToLocal(t *testing.T) {
	store := &stubStore{mappings: []*entity.RemotePathMapping{
		{ID: 1, Host: "seedbox", RemotePath: "/data/", LocalPath: "/mnt/seedbox/"},
		{ID: 2, Host: "seedbox", RemotePath: "/data/downloads/", LocalPath: "/mnt/downloads/"},
		{ID: 3, Host: "other", RemotePath: "/data/downloads/", LocalPath: "/mnt/other/"},
	}}

	srv := New(store, testLogger())

	testCases := []struct {
		name     string
		host     string
		remote   string
		expected string
	}{
		{
			name:     "Longest prefix wins",
			host:     "seedbox",
			remote:   "/data/downloads/Game.One-GRP/setup.exe",
			expected: "/mnt/downloads/Game.One-GRP/setup.exe",
		},
		{
			name:     "Shorter prefix when longer does not match",
			host:     "seedbox",
			remote:   "/data/complete/Game.Two-GRP",
			expected: "/mnt/seedbox/complete/Game.Two-GRP",
		},
		{
			name:     "Host is matched case insensitively",
			host:     "SeedBox",
			remote:   "/data/downloads/x",
			expected: "/mnt/downloads/x",
		},
		{
			name:     "Unmatched host passes through",
			host:     "unknown",
			remote:   "/data/downloads/x",
			expected: "/data/downloads/x",
		},
		{
			name:     "Unmatched path passes through",
			host:     "seedbox",
			remote:   "/tmp/x",
			expected: "/tmp/x",
		},
		{
			name:     "Exact prefix maps to local root",
			host:     "seedbox",
			remote:   "/data/downloads",
			expected: "/mnt/downloads",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := srv.RemapRemoteToLocal(context.Background(), tc.host, tc.remote)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestRemapDoesNotMatchPartialSegments(t *testing.T) {
	store := &stubStore{mappings: []*entity.RemotePathMapping{
		{ID: 1, Host: "seedbox", RemotePath: "/data/down/", LocalPath: "/mnt/down/"},
	}}

	srv := New(store, testLogger())

	got, err := srv.RemapRemoteToLocal(context.Background(), "seedbox", "/data/downloads/x")
	require.NoError(t, err)
	require.Equal(t, "/data/downloads/x", got, "/data/down must not match /data/downloads")
}

func TestAddNormalizesTrailingSeparator(t *testing.T) {
	store := &stubStore{}
	srv := New(store, testLogger())

	_, err := srv.Add(context.Background(), &entity.RemotePathMapping{
		Host:       "seedbox",
		RemotePath: "/data/downloads",
		LocalPath:  "/mnt/downloads",
	})
	require.NoError(t, err)
	require.Equal(t, "/data/downloads/", store.mappings[0].RemotePath)
	require.Equal(t, "/mnt/downloads/", store.mappings[0].LocalPath)
}
