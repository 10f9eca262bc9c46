package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyvault/skyvault/internal/model"
	"github.com/skyvault/skyvault/internal/repository"
)

type shareFixture struct {
	svc    *ShareService
	access *AccessService
	files  *memFileRepo
	shares *memShareRepo
	users  *memUserRepo
}

func newShareFixture(t *testing.T) *shareFixture {
	t.Helper()
	files := newMemFileRepo()
	shares := newMemShareRepo(files)
	users := newMemUserRepo()
	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, users.Create(context.Background(), &model.User{
			ID:        id,
			Email:     id + "@example.com",
			CreatedAt: time.Now(),
		}))
	}
	return &shareFixture{
		svc:    NewShareService(files, shares, users),
		access: NewAccessService(files, shares),
		files:  files,
		shares: shares,
		users:  users,
	}
}

func TestShareLifecycle(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	seedFile(t, f.files, "alice", "docs/report.pdf")
	target := SharedVia("docs/report.pdf", "alice")

	// Grant READ: bob can read but not write.
	grant, err := f.svc.Share(ctx, "alice", "docs/report.pdf", "bob", model.PermissionRead)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionRead, grant.Permission)
	assert.NoError(t, f.access.CanRead(ctx, "bob", target))
	assert.ErrorIs(t, f.access.CanWrite(ctx, "bob", target), ErrPermissionDenied)

	// Raise to WRITE: bob can now write.
	err = f.svc.UpdatePermission(ctx, "alice", "docs/report.pdf", "bob", model.PermissionWrite)
	require.NoError(t, err)
	assert.NoError(t, f.access.CanWrite(ctx, "bob", target))

	// Unshare removes access entirely.
	err = f.svc.Unshare(ctx, "alice", "docs/report.pdf", "bob")
	require.NoError(t, err)
	assert.ErrorIs(t, f.access.CanRead(ctx, "bob", target), ErrPermissionDenied)
}

func TestShareRejectsSelfShare(t *testing.T) {
	f := newShareFixture(t)
	seedFile(t, f.files, "alice", "docs/report.pdf")

	_, err := f.svc.Share(context.Background(), "alice", "docs/report.pdf", "alice", model.PermissionRead)
	assert.ErrorIs(t, err, ErrSelfShare)

	// Rejected before the store was touched.
	_, lookupErr := f.shares.ByKey(context.Background(), "docs/report.pdf", "alice", "alice")
	assert.ErrorIs(t, lookupErr, repository.ErrShareNotFound)
}

func TestShareRequiresOwnedFile(t *testing.T) {
	f := newShareFixture(t)

	_, err := f.svc.Share(context.Background(), "alice", "ghost.txt", "bob", model.PermissionRead)
	assert.ErrorIs(t, err, repository.ErrFileNotFound)
}

func TestShareRequiresKnownGrantee(t *testing.T) {
	f := newShareFixture(t)
	seedFile(t, f.files, "alice", "docs/report.pdf")

	_, err := f.svc.Share(context.Background(), "alice", "docs/report.pdf", "nobody", model.PermissionRead)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestShareRejectsInvalidPermission(t *testing.T) {
	f := newShareFixture(t)
	seedFile(t, f.files, "alice", "docs/report.pdf")

	_, err := f.svc.Share(context.Background(), "alice", "docs/report.pdf", "bob", model.Permission("ADMIN"))
	assert.ErrorIs(t, err, ErrInvalidPermission)
}

func TestShareDuplicateGrant(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	seedFile(t, f.files, "alice", "docs/report.pdf")

	_, err := f.svc.Share(ctx, "alice", "docs/report.pdf", "bob", model.PermissionRead)
	require.NoError(t, err)
	_, err = f.svc.Share(ctx, "alice", "docs/report.pdf", "bob", model.PermissionWrite)
	assert.ErrorIs(t, err, repository.ErrShareExists)
}

func TestReceivedByAndGrantees(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	seedFile(t, f.files, "alice", "docs/report.pdf")

	_, err := f.svc.Share(ctx, "alice", "docs/report.pdf", "bob", model.PermissionRead)
	require.NoError(t, err)

	received, err := f.svc.ReceivedBy(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "docs/report.pdf", received[0].Path)
	assert.Equal(t, model.PermissionRead, received[0].Permission)

	grantees, err := f.svc.GranteesOf(ctx, "alice", "docs/report.pdf")
	require.NoError(t, err)
	require.Len(t, grantees, 1)
	assert.Equal(t, "bob", grantees[0].ID)

	grant, err := f.svc.PermissionFor(ctx, "bob", "alice", "docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, model.PermissionRead, grant.Permission)
}
