package entity

// IndexerDefinition is a user-managed indexer configuration. Settings is an
// opaque JSON blob interpreted by the protocol client named by Implementation.
type IndexerDefinition struct {
	ID             int64
	Name           string
	Implementation string // "torznab" or "newznab"
	Settings       string
	EnableRSS      bool
	EnableSearch   bool
	Priority       int // Lower sorts first
}

// DownloadClientDefinition is a user-managed download client configuration.
type DownloadClientDefinition struct {
	ID             int64
	Name           string
	Implementation string // "qbittorrent" or "sabnzbd"
	Settings       string
	Protocol       Protocol
	Priority       int
	Enable         bool
}
