package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type GameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Get(ctx context.Context, id int64) (*entity.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, year, platform, path, root_folder_path, game_file_id, monitored, added_at
		FROM games WHERE id = ?`, id)

	return scanGame(row)
}

func (r *GameRepository) All(ctx context.Context) ([]*entity.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, year, platform, path, root_folder_path, game_file_id, monitored, added_at
		FROM games ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("cannot query games: %w", err)
	}
	defer rows.Close()

	var games []*entity.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	return games, rows.Err()
}

func (r *GameRepository) Insert(ctx context.Context, game *entity.Game) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO games (title, year, platform, path, root_folder_path, game_file_id, monitored, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		game.Title, game.Year, game.Platform, game.Path, game.RootFolderPath,
		game.GameFileID, game.Monitored, game.AddedAt)
	if err != nil {
		return 0, fmt.Errorf("cannot insert game: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get game id: %w", err)
	}
	game.ID = id

	return id, nil
}

func (r *GameRepository) Update(ctx context.Context, game *entity.Game) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE games SET title = ?, year = ?, platform = ?, path = ?,
			root_folder_path = ?, game_file_id = ?, monitored = ?
		WHERE id = ?`,
		game.Title, game.Year, game.Platform, game.Path, game.RootFolderPath,
		game.GameFileID, game.Monitored, game.ID)
	if err != nil {
		return fmt.Errorf("cannot update game: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrGameNotFoundError
	}

	return nil
}

func (r *GameRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete game: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*entity.Game, error) {
	var game entity.Game

	err := row.Scan(&game.ID, &game.Title, &game.Year, &game.Platform, &game.Path,
		&game.RootFolderPath, &game.GameFileID, &game.Monitored, &game.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrGameNotFoundError
		}

		return nil, fmt.Errorf("cannot scan game: %w", err)
	}

	return &game, nil
}
