package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/skyvault/skyvault/internal/model"
)

type ShareRepository interface {
	Create(ctx context.Context, grant *model.ShareGrant) error
	ByKey(ctx context.Context, filePath, ownerID, userID string) (*model.ShareGrant, error)
	ReceivedBy(ctx context.Context, userID string) ([]*model.SharedFile, error)
	GranteesOf(ctx context.Context, filePath, ownerID string) ([]*model.User, error)
	UpdatePermission(ctx context.Context, filePath, ownerID, userID string, permission model.Permission) error
	Delete(ctx context.Context, filePath, ownerID, userID string) error
}

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, grant *model.ShareGrant) error {
	query := `INSERT INTO shared_files (file_path, owner_id, user_id, permission, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		grant.FilePath,
		grant.OwnerID,
		grant.UserID,
		grant.Permission,
		grant.CreatedAt,
	)

	return translate("create share grant", err, ErrShareNotFound, ErrShareExists)
}

func (r *shareRepository) ByKey(ctx context.Context, filePath, ownerID, userID string) (*model.ShareGrant, error) {
	grant := &model.ShareGrant{}
	query := `SELECT * FROM shared_files WHERE file_path = $1 AND owner_id = $2 AND user_id = $3`

	err := r.db.GetContext(ctx, grant, query, filePath, ownerID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, translate("get share grant", err, ErrShareNotFound, ErrShareExists)
	}

	return grant, nil
}

// ReceivedBy lists files other users have shared with userID, joined
// with the owning file record and the owner's email.
func (r *shareRepository) ReceivedBy(ctx context.Context, userID string) ([]*model.SharedFile, error) {
	var files []*model.SharedFile
	query := `SELECT f.user_id, f.path, f.file_type, f.created_at, f.updated_at,
	                 u.email AS owner_email, s.permission
	          FROM shared_files s
	          JOIN files f ON f.user_id = s.owner_id AND f.path = s.file_path
	          JOIN users u ON u.id = s.owner_id
	          WHERE s.user_id = $1
	          ORDER BY f.user_id, f.path`

	err := r.db.SelectContext(ctx, &files, query, userID)
	if err != nil {
		return nil, translate("list received shares", err, ErrShareNotFound, ErrShareExists)
	}

	return files, nil
}

// GranteesOf lists the users a file is shared with.
func (r *shareRepository) GranteesOf(ctx context.Context, filePath, ownerID string) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT u.* FROM shared_files s
	          JOIN users u ON u.id = s.user_id
	          WHERE s.file_path = $1 AND s.owner_id = $2
	          ORDER BY u.email`

	err := r.db.SelectContext(ctx, &users, query, filePath, ownerID)
	if err != nil {
		return nil, translate("list share grantees", err, ErrShareNotFound, ErrShareExists)
	}

	return users, nil
}

func (r *shareRepository) UpdatePermission(ctx context.Context, filePath, ownerID, userID string, permission model.Permission) error {
	query := `UPDATE shared_files SET permission = $1
	          WHERE file_path = $2 AND owner_id = $3 AND user_id = $4`

	result, err := r.db.ExecContext(ctx, query, permission, filePath, ownerID, userID)
	if err != nil {
		return translate("update share permission", err, ErrShareNotFound, ErrShareExists)
	}

	return affected("update share permission", result, ErrShareNotFound)
}

func (r *shareRepository) Delete(ctx context.Context, filePath, ownerID, userID string) error {
	query := `DELETE FROM shared_files WHERE file_path = $1 AND owner_id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, filePath, ownerID, userID)
	if err != nil {
		return translate("delete share grant", err, ErrShareNotFound, ErrShareExists)
	}

	return affected("delete share grant", result, ErrShareNotFound)
}
