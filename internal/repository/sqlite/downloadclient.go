package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type DownloadClientRepository struct {
	db *sql.DB
}

func NewDownloadClientRepository(db *sql.DB) *DownloadClientRepository {
	return &DownloadClientRepository{db: db}
}

func (r *DownloadClientRepository) All(ctx context.Context) ([]*entity.DownloadClientDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, implementation, settings, protocol, priority, enable
		FROM download_clients ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("cannot query download clients: %w", err)
	}
	defer rows.Close()

	var defs []*entity.DownloadClientDefinition
	for rows.Next() {
		var def entity.DownloadClientDefinition
		if err := rows.Scan(&def.ID, &def.Name, &def.Implementation, &def.Settings,
			&def.Protocol, &def.Priority, &def.Enable); err != nil {
			return nil, fmt.Errorf("cannot scan download client: %w", err)
		}

		defs = append(defs, &def)
	}

	return defs, rows.Err()
}

func (r *DownloadClientRepository) Get(ctx context.Context, id int64) (*entity.DownloadClientDefinition, error) {
	var def entity.DownloadClientDefinition

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, implementation, settings, protocol, priority, enable
		FROM download_clients WHERE id = ?`, id).
		Scan(&def.ID, &def.Name, &def.Implementation, &def.Settings,
			&def.Protocol, &def.Priority, &def.Enable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrDefinitionNotFoundError
		}

		return nil, fmt.Errorf("cannot scan download client: %w", err)
	}

	return &def, nil
}

func (r *DownloadClientRepository) Insert(ctx context.Context, def *entity.DownloadClientDefinition) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO download_clients (name, implementation, settings, protocol, priority, enable)
		VALUES (?, ?, ?, ?, ?, ?)`,
		def.Name, def.Implementation, def.Settings, def.Protocol, def.Priority, def.Enable)
	if err != nil {
		return 0, fmt.Errorf("cannot insert download client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get download client id: %w", err)
	}
	def.ID = id

	return id, nil
}

func (r *DownloadClientRepository) Update(ctx context.Context, def *entity.DownloadClientDefinition) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE download_clients SET name = ?, implementation = ?, settings = ?,
			protocol = ?, priority = ?, enable = ?
		WHERE id = ?`,
		def.Name, def.Implementation, def.Settings, def.Protocol, def.Priority,
		def.Enable, def.ID)
	if err != nil {
		return fmt.Errorf("cannot update download client: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrDefinitionNotFoundError
	}

	return nil
}

func (r *DownloadClientRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM download_clients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete download client: %w", err)
	}

	return nil
}
