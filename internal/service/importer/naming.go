package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grabarr/grabarr/internal/entity"
)

var illegalFileNameChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", "\"", "_",
	"/", "_", "\\", "_", "|", "_", "?", "_", "*", "_",
)

func cleanFileName(name string) string {
	return strings.TrimSpace(illegalFileNameChars.Replace(name))
}

// buildGameFolder names the destination folder "{Title} ({Year}) [{Platform}]".
// The year segment is omitted when the game has none.
func buildGameFolder(game *entity.Game) string {
	name := game.Title
	if game.Year > 0 {
		name = fmt.Sprintf("%s (%d)", name, game.Year)
	}
	if game.Platform != "" {
		name = fmt.Sprintf("%s [%s]", name, game.Platform)
	}

	return cleanFileName(name)
}

func buildGameFileName(game *entity.Game, sourcePath string) string {
	return buildGameFolder(game) + strings.ToLower(filepath.Ext(sourcePath))
}
