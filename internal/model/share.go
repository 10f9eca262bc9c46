package model

import (
	"time"
)

type Permission string

const (
	PermissionRead  Permission = "READ"
	PermissionWrite Permission = "WRITE"
)

func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// AllowsWrite reports whether the permission grants write access.
// WRITE implies READ; the reverse does not hold.
func (p Permission) AllowsWrite() bool {
	return p == PermissionWrite
}

// ShareGrant lets one non-owner read or write one specific file.
// (FilePath, OwnerID, UserID) is unique: one grant per file/granter/grantee.
type ShareGrant struct {
	FilePath   string     `db:"file_path" json:"filePath"`
	OwnerID    string     `db:"owner_id" json:"ownerId"`
	UserID     string     `db:"user_id" json:"userId"`
	Permission Permission `db:"permission" json:"permission"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// SharedFile is a file record joined with the grant it was received
// through, as listed for the grantee.
type SharedFile struct {
	File
	OwnerEmail string     `db:"owner_email" json:"ownerEmail"`
	Permission Permission `db:"permission" json:"permission"`
}
