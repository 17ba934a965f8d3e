package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grabarr/grabarr/internal/entity"
)

type GameFileRepository struct {
	db *sql.DB
}

func NewGameFileRepository(db *sql.DB) *GameFileRepository {
	return &GameFileRepository{db: db}
}

func (r *GameFileRepository) Insert(ctx context.Context, file *entity.GameFile) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO game_files (game_id, relative_path, size, platform, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		file.GameID, file.RelativePath, file.Size, file.Platform, file.AddedAt)
	if err != nil {
		return 0, fmt.Errorf("cannot insert game file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get game file id: %w", err)
	}
	file.ID = id

	return id, nil
}

func (r *GameFileRepository) FindByGameID(ctx context.Context, gameID int64) ([]*entity.GameFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_id, relative_path, size, platform, added_at
		FROM game_files WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("cannot query game files: %w", err)
	}
	defer rows.Close()

	var files []*entity.GameFile
	for rows.Next() {
		var file entity.GameFile
		if err := rows.Scan(&file.ID, &file.GameID, &file.RelativePath,
			&file.Size, &file.Platform, &file.AddedAt); err != nil {
			return nil, fmt.Errorf("cannot scan game file: %w", err)
		}

		files = append(files, &file)
	}

	return files, rows.Err()
}
