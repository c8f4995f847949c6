// Package files provides the PostgreSQL-backed repository of file nodes.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// fileColumns is shared by every SELECT / RETURNING clause.
const fileColumns = `id, user_id, name, type, is_public, parent_id, local_path, created_at`

// PostgresRepository implements file node storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var (
		f         models.File
		localPath sql.NullString
	)
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Type, &f.IsPublic, &f.ParentID, &localPath, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.LocalPath = localPath.String
	return &f, nil
}

// Create inserts file and returns the stored row. An empty LocalPath is
// stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (user_id, name, type, is_public, parent_id, local_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns

	localPath := sql.NullString{String: file.LocalPath, Valid: file.LocalPath != ""}

	created, err := scanFile(r.db.QueryRowContext(ctx, query,
		file.UserID, file.Name, string(file.Type), file.IsPublic, file.ParentID, localPath))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// GetByID returns the file with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDAndOwner returns the file only when it belongs to userID.
func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByParent returns one page of userID's children of parentID in
// insertion order.
func (r *PostgresRepository) ListByParent(ctx context.Context, userID, parentID string, limit, offset int) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY seq
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, userID, parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0, limit)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetPublic updates is_public of a file owned by userID in a single
// statement. A file that is missing or owned by someone else yields
// common.ErrorNotFound and is left untouched.
func (r *PostgresRepository) SetPublic(ctx context.Context, id, userID string, isPublic bool) (*models.File, error) {
	query := `UPDATE files SET is_public = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + fileColumns
	return r.getOne(ctx, query, id, userID, isPublic)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
