package service

import (
	"context"
	"errors"
	"time"

	"github.com/skyvault/skyvault/internal/model"
	"github.com/skyvault/skyvault/internal/pathcheck"
	"github.com/skyvault/skyvault/internal/repository"
)

var (
	ErrSelfShare         = errors.New("cannot share a file with its owner")
	ErrInvalidPermission = errors.New("permission must be READ or WRITE")
)

// ShareService manages the grant lifecycle. Only the file's owner can
// create, change, or revoke grants; the resolver (AccessService) is
// who consumes them.
type ShareService struct {
	fileRepository  repository.FileRepository
	shareRepository repository.ShareRepository
	userRepository  repository.UserRepository
}

func NewShareService(
	fileRepository repository.FileRepository,
	shareRepository repository.ShareRepository,
	userRepository repository.UserRepository,
) *ShareService {
	return &ShareService{
		fileRepository:  fileRepository,
		shareRepository: shareRepository,
		userRepository:  userRepository,
	}
}

// Share grants granteeID access to ownerID's file. Self-shares are
// rejected before the store is touched.
func (s *ShareService) Share(ctx context.Context, ownerID, filePath, granteeID string, permission model.Permission) (*model.ShareGrant, error) {
	err := pathcheck.Validate(filePath)
	if err != nil {
		return nil, err
	}
	if !permission.Valid() {
		return nil, ErrInvalidPermission
	}
	if granteeID == ownerID {
		return nil, ErrSelfShare
	}

	// The granter must actually own the file being shared.
	_, err = s.fileRepository.ByPath(ctx, filePath, ownerID)
	if err != nil {
		return nil, err
	}

	_, err = s.userRepository.ByID(ctx, granteeID)
	if err != nil {
		return nil, err
	}

	grant := &model.ShareGrant{
		FilePath:   filePath,
		OwnerID:    ownerID,
		UserID:     granteeID,
		Permission: permission,
		CreatedAt:  time.Now(),
	}

	err = s.shareRepository.Create(ctx, grant)
	if err != nil {
		return nil, err
	}

	return grant, nil
}

// UpdatePermission changes an existing grant's permission.
func (s *ShareService) UpdatePermission(ctx context.Context, ownerID, filePath, granteeID string, permission model.Permission) error {
	err := pathcheck.Validate(filePath)
	if err != nil {
		return err
	}
	if !permission.Valid() {
		return ErrInvalidPermission
	}

	_, err = s.fileRepository.ByPath(ctx, filePath, ownerID)
	if err != nil {
		return err
	}

	return s.shareRepository.UpdatePermission(ctx, filePath, ownerID, granteeID, permission)
}

// Unshare revokes a grant entirely.
func (s *ShareService) Unshare(ctx context.Context, ownerID, filePath, granteeID string) error {
	err := pathcheck.Validate(filePath)
	if err != nil {
		return err
	}

	return s.shareRepository.Delete(ctx, filePath, ownerID, granteeID)
}

// ReceivedBy lists the files shared with userID, with the permission
// each was granted at.
func (s *ShareService) ReceivedBy(ctx context.Context, userID string) ([]*model.SharedFile, error) {
	return s.shareRepository.ReceivedBy(ctx, userID)
}

// GranteesOf lists the users ownerID's file is shared with.
func (s *ShareService) GranteesOf(ctx context.Context, ownerID, filePath string) ([]*model.User, error) {
	err := pathcheck.Validate(filePath)
	if err != nil {
		return nil, err
	}

	_, err = s.fileRepository.ByPath(ctx, filePath, ownerID)
	if err != nil {
		return nil, err
	}

	return s.shareRepository.GranteesOf(ctx, filePath, ownerID)
}

// PermissionFor returns the grant actorID holds on ownerID's file.
func (s *ShareService) PermissionFor(ctx context.Context, actorID, ownerID, filePath string) (*model.ShareGrant, error) {
	err := pathcheck.Validate(filePath)
	if err != nil {
		return nil, err
	}

	return s.shareRepository.ByKey(ctx, filePath, ownerID, actorID)
}
