package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grabarr/grabarr/internal/entity"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Insert(ctx context.Context, rec *entity.HistoryRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO history_records (event_type, game_id, game_title, source_title, date, data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.EventType, rec.GameID, rec.GameTitle, rec.SourceTitle, rec.Date, rec.Data)
	if err != nil {
		return 0, fmt.Errorf("cannot insert history record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get history record id: %w", err)
	}
	rec.ID = id

	return id, nil
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*entity.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, game_id, game_title, source_title, date, data
		FROM history_records ORDER BY date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cannot query history records: %w", err)
	}

	return scanHistoryRows(rows)
}

func (r *HistoryRepository) FindByGameID(ctx context.Context, gameID int64) ([]*entity.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, game_id, game_title, source_title, date, data
		FROM history_records WHERE game_id = ? ORDER BY date DESC, id DESC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("cannot query history records: %w", err)
	}

	return scanHistoryRows(rows)
}

func scanHistoryRows(rows *sql.Rows) ([]*entity.HistoryRecord, error) {
	defer rows.Close()

	var recs []*entity.HistoryRecord
	for rows.Next() {
		var rec entity.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.GameID, &rec.GameTitle,
			&rec.SourceTitle, &rec.Date, &rec.Data); err != nil {
			return nil, fmt.Errorf("cannot scan history record: %w", err)
		}

		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}
