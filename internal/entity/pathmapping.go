package entity

// RemotePathMapping rewrites a download client's reported path to the local
// filesystem view, for clients running on another host or in a container.
type RemotePathMapping struct {
	ID         int64
	Host       string
	RemotePath string
	LocalPath  string
}
