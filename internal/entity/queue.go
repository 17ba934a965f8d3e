package entity

// DownloadItemStatus is the unified status vocabulary across download
// clients. Each client implementation maps its own states onto these.
type DownloadItemStatus int

const (
	DownloadItemStatusQueued DownloadItemStatus = iota
	DownloadItemStatusDownloading
	DownloadItemStatusPaused
	DownloadItemStatusCompleted
	DownloadItemStatusFailed
)

func (s DownloadItemStatus) String() string {
	switch s {
	case DownloadItemStatusQueued:
		return "Queued"
	case DownloadItemStatusDownloading:
		return "Downloading"
	case DownloadItemStatusPaused:
		return "Paused"
	case DownloadItemStatusCompleted:
		return "Completed"
	case DownloadItemStatusFailed:
		return "Failed"
	}

	return "Unknown"
}

// DownloadQueueItem is one in-flight or completed item as reported by a
// download client, normalized into the unified queue view.
type DownloadQueueItem struct {
	DownloadID    string // Client-assigned identifier, opaque to us
	Title         string
	TotalSize     int64
	RemainingSize int64
	OutputPath    string // As reported by the client, may need remapping
	Category      string
	Status        DownloadItemStatus
	Message       string
	ClientName    string
	ClientHost    string
	Protocol      Protocol
}
