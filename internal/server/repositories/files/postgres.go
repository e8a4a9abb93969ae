package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filedrop/internal/common"
	"filedrop/internal/dbx"
	"filedrop/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (owner_id, storage_key, name, size, mime_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.StorageKey, file.Name, file.Size, file.MimeType).Scan(&file.ID, &file.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

// ListByOwner returns the owner's files in upload order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	query :=
		`SELECT id, owner_id, storage_key, name, size, mime_type, is_shared, COALESCE(share_token, ''), created_at
		 FROM files
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.StorageKey, &item.Name,
			&item.Size, &item.MimeType, &item.IsShared, &item.ShareToken, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.File, error) {
	query :=
		`SELECT id, owner_id, storage_key, name, size, mime_type, is_shared, COALESCE(share_token, ''), created_at
		 FROM files
		 WHERE id = $1 AND owner_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query :=
		`SELECT id, owner_id, storage_key, name, size, mime_type, is_shared, COALESCE(share_token, ''), created_at
		 FROM files
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// SetShareToken marks the file shared and stores the new token. The pair is
// updated in a single statement so the shared flag and the token can never
// diverge.
func (r *PostgresRepository) SetShareToken(ctx context.Context, id, ownerID int64, token string) error {
	query :=
		`UPDATE files SET is_shared = TRUE, share_token = $3
		 WHERE id = $1 AND owner_id = $2
		 `

	result, err := r.db.ExecContext(ctx, query, id, ownerID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID int64) (string, error) {
	query :=
		`DELETE FROM files
		 WHERE id = $1 AND owner_id = $2
		 RETURNING storage_key
		 `

	var storageKey string
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&storageKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return storageKey, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(&file.ID, &file.OwnerID, &file.StorageKey, &file.Name,
		&file.Size, &file.MimeType, &file.IsShared, &file.ShareToken, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}
