package entity

import "time"

// Game is a managed library entry.
type Game struct {
	ID             int64
	Title          string
	Year           int
	Platform       string // Normalized platform tag, e.g. "PC", "SWITCH"
	Path           string // Current on-disk folder, empty until first import
	RootFolderPath string
	GameFileID     int64 // 0 when no file has been imported yet
	Monitored      bool
	AddedAt        time.Time
}

// GameFile records one imported file belonging to a game.
type GameFile struct {
	ID           int64
	GameID       int64
	RelativePath string // Relative to the game's root folder
	Size         int64
	Platform     string
	AddedAt      time.Time
}
