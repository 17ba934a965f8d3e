package entity

// ImportResult reports the outcome of one attempted file import. A failed
// step appends a human-readable message to Errors and stops the import.
type ImportResult struct {
	Success         bool
	Game            *Game
	ImportedFile    *GameFile
	SourcePath      string
	DestinationPath string
	Errors          []string
}
