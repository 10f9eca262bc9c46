package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyvault/skyvault/internal/model"
)

// FilePatch carries the mutable fields of a file record. A nil Path
// leaves the path unchanged (content replace); a non-nil Path renames.
type FilePatch struct {
	Path      *string
	UpdatedAt time.Time
}

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	Update(ctx context.Context, path, userID string, patch FilePatch) error
	Delete(ctx context.Context, path, userID string) error
	ByPath(ctx context.Context, path, userID string) (*model.File, error)
	OwnedBy(ctx context.Context, userID string) ([]*model.File, error)
	Owns(ctx context.Context, userID, path string) (bool, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (user_id, path, file_type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		file.UserID,
		file.Path,
		file.FileType,
		file.CreatedAt,
		file.UpdatedAt,
	)

	return translate("create file record", err, ErrFileNotFound, ErrFileExists)
}

func (r *fileRepository) Update(ctx context.Context, path, userID string, patch FilePatch) error {
	newPath := path
	if patch.Path != nil {
		newPath = *patch.Path
	}

	query := `UPDATE files SET path = $1, updated_at = $2 WHERE user_id = $3 AND path = $4`

	result, err := r.db.ExecContext(ctx, query, newPath, patch.UpdatedAt, userID, path)
	if err != nil {
		return translate("update file record", err, ErrFileNotFound, ErrFileExists)
	}

	return affected("update file record", result, ErrFileNotFound)
}

func (r *fileRepository) Delete(ctx context.Context, path, userID string) error {
	query := `DELETE FROM files WHERE user_id = $1 AND path = $2`

	result, err := r.db.ExecContext(ctx, query, userID, path)
	if err != nil {
		return translate("delete file record", err, ErrFileNotFound, ErrFileExists)
	}

	return affected("delete file record", result, ErrFileNotFound)
}

func (r *fileRepository) ByPath(ctx context.Context, path, userID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE user_id = $1 AND path = $2`

	err := r.db.GetContext(ctx, file, query, userID, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, translate("get file record", err, ErrFileNotFound, ErrFileExists)
	}

	return file, nil
}

func (r *fileRepository) OwnedBy(ctx context.Context, userID string) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE user_id = $1 ORDER BY path`

	err := r.db.SelectContext(ctx, &files, query, userID)
	if err != nil {
		return nil, translate("list owned files", err, ErrFileNotFound, ErrFileExists)
	}

	return files, nil
}

func (r *fileRepository) Owns(ctx context.Context, userID, path string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM files WHERE user_id = $1 AND path = $2`

	err := r.db.GetContext(ctx, &count, query, userID, path)
	if err != nil {
		return false, translate("check file ownership", err, ErrFileNotFound, ErrFileExists)
	}

	return count > 0, nil
}
