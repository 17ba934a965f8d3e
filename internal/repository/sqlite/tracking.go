package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type TrackingRepository struct {
	db *sql.DB
}

func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

func (r *TrackingRepository) Insert(ctx context.Context, tr *entity.DownloadTracking) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO download_trackings (download_id, game_id, game_title, source_title, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		tr.DownloadID, tr.GameID, tr.GameTitle, tr.SourceTitle, tr.AddedAt)
	if err != nil {
		return 0, fmt.Errorf("cannot insert download tracking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get download tracking id: %w", err)
	}
	tr.ID = id

	return id, nil
}

func (r *TrackingRepository) FindByDownloadID(ctx context.Context, downloadID string) (*entity.DownloadTracking, error) {
	var tr entity.DownloadTracking

	err := r.db.QueryRowContext(ctx, `
		SELECT id, download_id, game_id, game_title, source_title, added_at
		FROM download_trackings WHERE download_id = ?`, downloadID).
		Scan(&tr.ID, &tr.DownloadID, &tr.GameID, &tr.GameTitle, &tr.SourceTitle, &tr.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTrackingNotFoundError
		}

		return nil, fmt.Errorf("cannot scan download tracking: %w", err)
	}

	return &tr, nil
}

func (r *TrackingRepository) All(ctx context.Context) ([]*entity.DownloadTracking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, download_id, game_id, game_title, source_title, added_at
		FROM download_trackings ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("cannot query download trackings: %w", err)
	}
	defer rows.Close()

	var trs []*entity.DownloadTracking
	for rows.Next() {
		var tr entity.DownloadTracking
		if err := rows.Scan(&tr.ID, &tr.DownloadID, &tr.GameID, &tr.GameTitle,
			&tr.SourceTitle, &tr.AddedAt); err != nil {
			return nil, fmt.Errorf("cannot scan download tracking: %w", err)
		}

		trs = append(trs, &tr)
	}

	return trs, rows.Err()
}

func (r *TrackingRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM download_trackings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete download tracking: %w", err)
	}

	return nil
}
