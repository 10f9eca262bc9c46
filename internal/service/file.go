package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/skyvault/skyvault/internal/model"
	"github.com/skyvault/skyvault/internal/pathcheck"
	"github.com/skyvault/skyvault/internal/repository"
	"github.com/skyvault/skyvault/internal/storage"
	"github.com/skyvault/skyvault/internal/tree"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrIsFolder       = errors.New("target is a folder")
	ErrFolderNotEmpty = errors.New("folder is not empty")
)

// UploadResult is returned to the client after an upload or update.
type UploadResult struct {
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	FileType  string    `json:"fileType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FileService struct {
	fileRepository  repository.FileRepository
	shareRepository repository.ShareRepository
	access          *AccessService
	storage         storage.Storage
}

func NewFileService(
	fileRepository repository.FileRepository,
	shareRepository repository.ShareRepository,
	access *AccessService,
	blobStorage storage.Storage,
) *FileService {
	return &FileService{
		fileRepository:  fileRepository,
		shareRepository: shareRepository,
		access:          access,
		storage:         blobStorage,
	}
}

// Upload stores the first file part of the multipart stream under
// dirPath in the actor's own namespace and records it. A failed record
// insert cleans up the stored bytes so the two stores stay consistent.
func (s *FileService) Upload(ctx context.Context, actorID, dirPath string, mr *multipart.Reader) (*UploadResult, error) {
	err := pathcheck.Validate(dirPath)
	if err != nil {
		return nil, err
	}

	part, filename, err := firstFilePart(mr)
	if err != nil {
		return nil, err
	}

	// The path must be free before any bytes land on it; an occupied
	// path already has a record whose content must survive.
	rel := joinRel(dirPath, filename)
	owns, err := s.fileRepository.Owns(ctx, actorID, rel)
	if err != nil {
		return nil, err
	}
	if owns {
		return nil, repository.ErrFileExists
	}

	err = s.storage.Save(ctx, storage.Key(actorID, rel), part)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	now := time.Now()
	record := &model.File{
		UserID:    actorID,
		Path:      rel,
		FileType:  extension(rel),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.fileRepository.Create(ctx, record)
	if err != nil {
		// If the record insert fails, try to clean up the stored bytes
		delErr := s.storage.Delete(ctx, storage.Key(actorID, rel))
		if delErr != nil && !errors.Is(delErr, storage.ErrNotExist) {
			slog.Error("failed to clean up blob after record insert failure", "error", delErr, "path", rel)
		}
		return nil, err
	}

	return &UploadResult{
		Message:   "Upload complete",
		Path:      rel,
		FileType:  record.FileType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update replaces the bytes of an existing file with the uploaded part.
// The new object is staged and swapped into place before the old one is
// removed, so a crash mid-update never loses both versions. The record
// keeps its creation time; a changed filename renames the record (share
// grants follow the rename through the schema's cascade).
func (s *FileService) Update(ctx context.Context, actorID string, target FileTarget, mr *multipart.Reader) (*UploadResult, error) {
	err := pathcheck.Validate(target.Path)
	if err != nil {
		return nil, err
	}

	err = s.access.CanWrite(ctx, actorID, target)
	if err != nil {
		return nil, err
	}

	ownerID := target.Owner(actorID)
	existing, err := s.fileRepository.ByPath(ctx, target.Path, ownerID)
	if err != nil {
		return nil, err
	}
	if existing.IsFolder() {
		return nil, ErrIsFolder
	}

	part, filename, err := firstFilePart(mr)
	if err != nil {
		return nil, err
	}

	// A changed filename renames the record. The target path must be
	// free before the staged write; a sibling record's bytes live there.
	newRel := joinRel(parentOf(existing.Path), filename)
	if newRel != existing.Path {
		taken, err := s.fileRepository.Owns(ctx, ownerID, newRel)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrFileExists
		}
	}

	err = s.storage.Save(ctx, storage.Key(ownerID, newRel), part)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	now := time.Now()
	patch := repository.FilePatch{UpdatedAt: now}
	if newRel != existing.Path {
		patch.Path = &newRel
	}

	err = s.fileRepository.Update(ctx, existing.Path, ownerID, patch)
	if err != nil {
		return nil, err
	}

	if newRel != existing.Path {
		delErr := s.storage.Delete(ctx, storage.Key(ownerID, existing.Path))
		if delErr != nil && !errors.Is(delErr, storage.ErrNotExist) {
			slog.Warn("failed to remove replaced blob", "error", delErr, "path", existing.Path)
		}
	}

	return &UploadResult{
		Message:   "Update complete",
		Path:      newRel,
		FileType:  extension(newRel),
		CreatedAt: existing.CreatedAt,
		UpdatedAt: now,
	}, nil
}

// Open returns the file's record and a stream of its bytes for
// download. Shared reads resolve against the owner's namespace.
func (s *FileService) Open(ctx context.Context, actorID string, target FileTarget) (*model.File, io.ReadCloser, error) {
	err := pathcheck.Validate(target.Path)
	if err != nil {
		return nil, nil, err
	}

	err = s.access.CanRead(ctx, actorID, target)
	if err != nil {
		return nil, nil, err
	}

	ownerID := target.Owner(actorID)
	record, err := s.fileRepository.ByPath(ctx, target.Path, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if record.IsFolder() {
		return nil, nil, ErrIsFolder
	}

	rc, err := s.storage.Open(ctx, storage.Key(ownerID, record.Path))
	if errors.Is(err, storage.ErrNotExist) {
		// Record without bytes: the stores drifted apart.
		return nil, nil, repository.ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return record, rc, nil
}

// Remove deletes a file's bytes and record. Share grants referencing
// the file go with it (schema cascade). Folders must be empty.
func (s *FileService) Remove(ctx context.Context, actorID string, target FileTarget) error {
	err := pathcheck.Validate(target.Path)
	if err != nil {
		return err
	}

	err = s.access.CanWrite(ctx, actorID, target)
	if err != nil {
		return err
	}

	ownerID := target.Owner(actorID)
	record, err := s.fileRepository.ByPath(ctx, target.Path, ownerID)
	if err != nil {
		return err
	}

	if record.IsFolder() {
		empty, err := s.folderEmpty(ctx, ownerID, record.Path)
		if err != nil {
			return err
		}
		if !empty {
			return ErrFolderNotEmpty
		}
	} else {
		err = s.storage.Delete(ctx, storage.Key(ownerID, record.Path))
		if err != nil && !errors.Is(err, storage.ErrNotExist) {
			return err
		}
	}

	return s.fileRepository.Delete(ctx, record.Path, ownerID)
}

// CreateFolder records an explicitly created, possibly empty folder in
// the actor's own namespace. Folders exist only as records; the blob
// store has no directory objects.
func (s *FileService) CreateFolder(ctx context.Context, actorID, folderPath string) (*model.File, error) {
	err := pathcheck.Validate(folderPath)
	if err != nil {
		return nil, err
	}

	folderPath = strings.Trim(folderPath, "/")
	if folderPath == "" {
		return nil, fmt.Errorf("%w: empty folder path", pathcheck.ErrInvalidPath)
	}

	now := time.Now()
	record := &model.File{
		UserID:    actorID,
		Path:      folderPath,
		FileType:  model.FileTypeFolder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.fileRepository.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// OwnTree projects the actor's flat records into a nested folder tree.
func (s *FileService) OwnTree(ctx context.Context, actorID string) (*tree.Node, error) {
	records, err := s.fileRepository.OwnedBy(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// OwnedBy returns path order already; keep the projection
	// deterministic even if a repository implementation does not.
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	return tree.Build(records), nil
}

// SearchByName matches the last path segment case-insensitively over
// the files the actor owns or has been granted at least read on. An
// empty result is a valid outcome, not an error.
func (s *FileService) SearchByName(ctx context.Context, actorID, name string) ([]*model.File, error) {
	err := pathcheck.Validate(name)
	if err != nil {
		return nil, err
	}

	owned, err := s.fileRepository.OwnedBy(ctx, actorID)
	if err != nil {
		return nil, err
	}

	shared, err := s.shareRepository.ReceivedBy(ctx, actorID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	matches := []*model.File{}
	for _, rec := range owned {
		if strings.Contains(strings.ToLower(rec.Name()), needle) {
			matches = append(matches, rec)
		}
	}
	for _, rec := range shared {
		if strings.Contains(strings.ToLower(rec.Name()), needle) {
			f := rec.File
			matches = append(matches, &f)
		}
	}

	return matches, nil
}

// firstFilePart consumes the stream up to its first file part,
// skipping non-file form fields, and returns the part alongside its
// sanitized filename. The caller decides where the bytes land, so
// collision checks can run before anything is written.
func firstFilePart(mr *multipart.Reader) (*multipart.Part, string, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", fmt.Errorf("%w: no file part in stream", ErrUploadFailed)
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}

		if part.FileName() == "" {
			continue
		}

		filename := filepath.Base(part.FileName())
		if filename == "." || filename == string(filepath.Separator) {
			return nil, "", fmt.Errorf("%w: missing filename on file part", ErrUploadFailed)
		}
		err = pathcheck.Validate(filename)
		if err != nil {
			return nil, "", err
		}

		return part, filename, nil
	}
}

func (s *FileService) folderEmpty(ctx context.Context, ownerID, folderPath string) (bool, error) {
	records, err := s.fileRepository.OwnedBy(ctx, ownerID)
	if err != nil {
		return false, err
	}

	prefix := folderPath + "/"
	for _, rec := range records {
		if strings.HasPrefix(rec.Path, prefix) {
			return false, nil
		}
	}
	return true, nil
}

// extension returns the file's extension without the leading dot, or
// an empty string when there is none.
func extension(p string) string {
	return strings.TrimPrefix(filepath.Ext(p), ".")
}

// parentOf returns the folder part of a relative path, "" at the root.
func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

func joinRel(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
