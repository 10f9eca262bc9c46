package model

import (
	"strings"
	"time"
)

// FileTypeFolder is the sentinel stored in File.FileType for folder records.
// Files store their extension (without the leading dot) instead.
const FileTypeFolder = "folder"

// File is one row of a user's flat namespace: a file or an explicitly
// created folder. (UserID, Path) is unique per owner.
type File struct {
	UserID    string    `db:"user_id" json:"userId"`
	Path      string    `db:"path" json:"path"`
	FileType  string    `db:"file_type" json:"fileType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (f *File) IsFolder() bool {
	return f.FileType == FileTypeFolder
}

// Name returns the last segment of the file's path.
func (f *File) Name() string {
	i := strings.LastIndex(f.Path, "/")
	return f.Path[i+1:]
}
