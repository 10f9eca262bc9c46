package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyvault/skyvault/internal/repository"
)

var ErrPermissionDenied = errors.New("permission denied")

// FileTarget identifies the file an actor wants to operate on: either a
// path in the actor's own namespace, or a path in another user's
// namespace reached through a share grant. Handlers build it once at
// the boundary; the rest of the code never branches on owner strings.
type FileTarget struct {
	Path    string
	ownerID string
	shared  bool
}

// Owned targets a path in the actor's own namespace.
func Owned(path string) FileTarget {
	return FileTarget{Path: path}
}

// SharedVia targets a path owned by ownerID, reached via a grant.
func SharedVia(path, ownerID string) FileTarget {
	return FileTarget{Path: path, ownerID: ownerID, shared: true}
}

func (t FileTarget) IsShared() bool {
	return t.shared
}

// Owner returns the effective owner of the target: the file's true
// owner, never the grantee. Physical storage resolution must always
// use this value.
func (t FileTarget) Owner(actorID string) string {
	if t.shared {
		return t.ownerID
	}
	return actorID
}

// AccessService decides whether an actor may read or write a file.
// Ownership always wins; otherwise access requires a share grant of
// sufficient permission from the file's owner.
type AccessService struct {
	fileRepository  repository.FileRepository
	shareRepository repository.ShareRepository
}

func NewAccessService(fileRepository repository.FileRepository, shareRepository repository.ShareRepository) *AccessService {
	return &AccessService{
		fileRepository:  fileRepository,
		shareRepository: shareRepository,
	}
}

func (s *AccessService) CanRead(ctx context.Context, actorID string, target FileTarget) error {
	return s.check(ctx, actorID, target, false)
}

func (s *AccessService) CanWrite(ctx context.Context, actorID string, target FileTarget) error {
	return s.check(ctx, actorID, target, true)
}

func (s *AccessService) check(ctx context.Context, actorID string, target FileTarget, write bool) error {
	// Ownership is the fast path and always wins, but only ownership
	// of the target's namespace. Owning the same path string in one's
	// own namespace grants nothing on another owner's file.
	if actorID == target.Owner(actorID) {
		owns, err := s.fileRepository.Owns(ctx, actorID, target.Path)
		if err != nil {
			return fmt.Errorf("failed to check ownership: %w", err)
		}
		if owns {
			return nil
		}
	}

	grant, err := s.shareRepository.ByKey(ctx, target.Path, target.Owner(actorID), actorID)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("failed to look up share grant: %w", err)
	}

	if write && !grant.Permission.AllowsWrite() {
		return ErrPermissionDenied
	}

	return nil
}
