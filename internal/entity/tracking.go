package entity

import "time"

// DownloadTracking correlates a client-assigned download identifier to a
// library entry. It is the pipeline's only durable in-flight state: created
// when a release is sent to a client, deleted when its import succeeds.
type DownloadTracking struct {
	ID          int64
	DownloadID  string
	GameID      int64
	GameTitle   string // Denormalized so history survives game deletion
	SourceTitle string
	AddedAt     time.Time
}
