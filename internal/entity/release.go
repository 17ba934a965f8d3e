package entity

import "time"

// Protocol is the transport family a release is acquired over.
type Protocol string

const (
	ProtocolTorrent Protocol = "torrent"
	ProtocolUsenet  Protocol = "usenet"
)

// ReleaseCandidate represents one searchable result from an indexer. It only
// lives for the duration of a search/grab round trip and is never persisted.
type ReleaseCandidate struct {
	GUID        string // Unique identifier assigned by the indexer
	Title       string
	Size        int64 // Bytes, 0 when the indexer did not report one
	DownloadURL string
	InfoURL     string
	Indexer     string // Display name of the source indexer
	IndexerID   int64
	Protocol    Protocol
	PublishDate time.Time
	Seeders     int // Torrent only, zero for usenet
	Leechers    int // Torrent only, zero for usenet
	Categories  []string
}
