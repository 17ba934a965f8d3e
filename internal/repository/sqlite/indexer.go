package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type IndexerRepository struct {
	db *sql.DB
}

func NewIndexerRepository(db *sql.DB) *IndexerRepository {
	return &IndexerRepository{db: db}
}

func (r *IndexerRepository) All(ctx context.Context) ([]*entity.IndexerDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, implementation, settings, enable_rss, enable_search, priority
		FROM indexers ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("cannot query indexers: %w", err)
	}
	defer rows.Close()

	var defs []*entity.IndexerDefinition
	for rows.Next() {
		var def entity.IndexerDefinition
		if err := rows.Scan(&def.ID, &def.Name, &def.Implementation, &def.Settings,
			&def.EnableRSS, &def.EnableSearch, &def.Priority); err != nil {
			return nil, fmt.Errorf("cannot scan indexer: %w", err)
		}

		defs = append(defs, &def)
	}

	return defs, rows.Err()
}

func (r *IndexerRepository) Get(ctx context.Context, id int64) (*entity.IndexerDefinition, error) {
	var def entity.IndexerDefinition

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, implementation, settings, enable_rss, enable_search, priority
		FROM indexers WHERE id = ?`, id).
		Scan(&def.ID, &def.Name, &def.Implementation, &def.Settings,
			&def.EnableRSS, &def.EnableSearch, &def.Priority)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrDefinitionNotFoundError
		}

		return nil, fmt.Errorf("cannot scan indexer: %w", err)
	}

	return &def, nil
}

func (r *IndexerRepository) Insert(ctx context.Context, def *entity.IndexerDefinition) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO indexers (name, implementation, settings, enable_rss, enable_search, priority)
		VALUES (?, ?, ?, ?, ?, ?)`,
		def.Name, def.Implementation, def.Settings, def.EnableRSS, def.EnableSearch, def.Priority)
	if err != nil {
		return 0, fmt.Errorf("cannot insert indexer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get indexer id: %w", err)
	}
	def.ID = id

	return id, nil
}

func (r *IndexerRepository) Update(ctx context.Context, def *entity.IndexerDefinition) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE indexers SET name = ?, implementation = ?, settings = ?,
			enable_rss = ?, enable_search = ?, priority = ?
		WHERE id = ?`,
		def.Name, def.Implementation, def.Settings, def.EnableRSS, def.EnableSearch,
		def.Priority, def.ID)
	if err != nil {
		return fmt.Errorf("cannot update indexer: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrDefinitionNotFoundError
	}

	return nil
}

func (r *IndexerRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM indexers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete indexer: %w", err)
	}

	return nil
}
