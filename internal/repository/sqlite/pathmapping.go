package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grabarr/grabarr/internal/common"
	"github.com/grabarr/grabarr/internal/entity"
)

type PathMappingRepository struct {
	db *sql.DB
}

func NewPathMappingRepository(db *sql.DB) *PathMappingRepository {
	return &PathMappingRepository{db: db}
}

func (r *PathMappingRepository) All(ctx context.Context) ([]*entity.RemotePathMapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, host, remote_path, local_path
		FROM remote_path_mappings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("cannot query remote path mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*entity.RemotePathMapping
	for rows.Next() {
		var m entity.RemotePathMapping
		if err := rows.Scan(&m.ID, &m.Host, &m.RemotePath, &m.LocalPath); err != nil {
			return nil, fmt.Errorf("cannot scan remote path mapping: %w", err)
		}

		mappings = append(mappings, &m)
	}

	return mappings, rows.Err()
}

func (r *PathMappingRepository) Get(ctx context.Context, id int64) (*entity.RemotePathMapping, error) {
	var m entity.RemotePathMapping

	err := r.db.QueryRowContext(ctx, `
		SELECT id, host, remote_path, local_path
		FROM remote_path_mappings WHERE id = ?`, id).
		Scan(&m.ID, &m.Host, &m.RemotePath, &m.LocalPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMappingNotFoundError
		}

		return nil, fmt.Errorf("cannot scan remote path mapping: %w", err)
	}

	return &m, nil
}

func (r *PathMappingRepository) Insert(ctx context.Context, m *entity.RemotePathMapping) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO remote_path_mappings (host, remote_path, local_path)
		VALUES (?, ?, ?)`, m.Host, m.RemotePath, m.LocalPath)
	if err != nil {
		return 0, fmt.Errorf("cannot insert remote path mapping: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot get remote path mapping id: %w", err)
	}
	m.ID = id

	return id, nil
}

func (r *PathMappingRepository) Update(ctx context.Context, m *entity.RemotePathMapping) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE remote_path_mappings SET host = ?, remote_path = ?, local_path = ?
		WHERE id = ?`, m.Host, m.RemotePath, m.LocalPath, m.ID)
	if err != nil {
		return fmt.Errorf("cannot update remote path mapping: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrMappingNotFoundError
	}

	return nil
}

func (r *PathMappingRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM remote_path_mappings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cannot delete remote path mapping: %w", err)
	}

	return nil
}
