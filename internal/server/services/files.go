package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"filedrop/internal/common"
	"filedrop/internal/logging"
	"filedrop/internal/server/auth"
	"filedrop/internal/server/config"
	"filedrop/internal/server/models"
	"filedrop/internal/server/repositories/repomanager"
	"filedrop/internal/server/storage"
)

// allowedTypes maps permitted file extensions to the mime types accepted for
// them. Both the extension and the declared mime type must match.
var allowedTypes = map[string][]string{
	".txt":  {"text/plain"},
	".md":   {"text/markdown", "text/plain"},
	".csv":  {"text/csv", "text/plain"},
	".pdf":  {"application/pdf"},
	".png":  {"image/png"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".gif":  {"image/gif"},
	".zip":  {"application/zip"},
	".json": {"application/json", "text/plain"},
}

// FileService mediates all file operations. Every owner-restricted operation
// resolves the file through an ownership-scoped repository query, so a file
// belonging to someone else is indistinguishable from a missing one.
type FileService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	blobs         storage.BlobStore
	signer        *auth.Signer
	logger        logging.Logger
	baseURL       string
	shareTokenTTL time.Duration
	maxUploadSize int64
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore,
	signer *auth.Signer, logger logging.Logger, cfg *config.Config) *FileService {
	return &FileService{
		db:            db,
		repomanager:   m,
		blobs:         blobs,
		signer:        signer,
		logger:        logger,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		shareTokenTTL: cfg.ShareTokenTTL,
		maxUploadSize: cfg.MaxUploadSize,
	}
}

// Upload validates, stores, and registers a new file. The blob is written
// before the registry row so a failure never leaves a row pointing at
// nothing; if the row insert fails the blob is removed again.
func (s *FileService) Upload(ctx context.Context, ownerID int64, name, mimeType string, size int64, r io.Reader) (*models.File, error) {
	if name == "" {
		return nil, common.ErrValidation
	}
	if size > s.maxUploadSize {
		return nil, common.ErrPayloadTooLarge
	}
	if err := checkAllowedType(name, mimeType); err != nil {
		return nil, err
	}

	key := storage.NewStorageKey(ownerID)

	// The reader is capped at the declared size so a lying client cannot
	// stream past the limit it announced.
	if err := s.blobs.Put(ctx, key, io.LimitReader(r, size), size); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	repo := s.repomanager.Files(s.db)
	file, err := repo.Create(ctx, &models.File{
		OwnerID:    ownerID,
		StorageKey: key,
		Name:       name,
		Size:       size,
		MimeType:   mimeType,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Error(ctx, "orphaned blob after failed registry insert", "key", key, "error", delErr)
		}
		return nil, common.ErrInternal
	}

	return file, nil
}

// List returns the owner's files in upload order.
func (s *FileService) List(ctx context.Context, ownerID int64) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)
	files, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return files, nil
}

// Download streams a file back to its owner. A file that exists but belongs
// to someone else fails with ErrNotFound, same as a missing one.
func (s *FileService) Download(ctx context.Context, ownerID, fileID int64) (io.ReadCloser, *models.File, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, common.ErrInternal
	}

	return s.openBlob(ctx, file)
}

// Share mints a new share token for the file and returns a fully qualified
// share URL. The shared flag and the stored token are updated in one
// statement; any previously issued token stops working immediately.
func (s *FileService) Share(ctx context.Context, ownerID, fileID int64) (string, error) {
	repo := s.repomanager.Files(s.db)
	if _, err := repo.GetByIDAndOwner(ctx, fileID, ownerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrInternal
	}

	token, err := s.signer.IssueShare(fileID, s.shareTokenTTL)
	if err != nil {
		return "", common.ErrInternal
	}

	if err := repo.SetShareToken(ctx, fileID, ownerID, token); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrInternal
	}

	return s.baseURL + "/shared/" + token, nil
}

// RedeemShare resolves a share token to a file stream without any user
// identity. The token must verify, the file must still be shared, and the
// stored token must equal the presented one, so a rotated-out token fails
// even before its embedded expiry.
func (s *FileService) RedeemShare(ctx context.Context, token string) (io.ReadCloser, *models.File, error) {
	claims, err := s.signer.VerifyShare(token)
	if err != nil {
		return nil, nil, common.ErrInvalidToken
	}

	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByID(ctx, claims.FileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, common.ErrInternal
	}

	if !file.IsShared || subtle.ConstantTimeCompare([]byte(file.ShareToken), []byte(token)) != 1 {
		return nil, nil, common.ErrNotFound
	}

	return s.openBlob(ctx, file)
}

// Delete removes the registry row and then the backing blob. A blob deletion
// failure is logged but does not undo the row removal.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID int64) error {
	repo := s.repomanager.Files(s.db)
	key, err := repo.DeleteByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error(ctx, "blob cleanup failed after registry delete", "key", key, "error", err)
	}
	return nil
}

// openBlob resolves the file's locator in the object store. A missing blob is
// a consistency fault between registry and store, surfaced as ErrStorage.
func (s *FileService) openBlob(ctx context.Context, file *models.File) (io.ReadCloser, *models.File, error) {
	rc, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "registry locator does not resolve in object store",
			"file_id", file.ID, "key", file.StorageKey, "error", err)
		return nil, nil, common.ErrStorage
	}
	return rc, file, nil
}

func checkAllowedType(name, mimeType string) error {
	ext := strings.ToLower(path.Ext(name))
	mimes, ok := allowedTypes[ext]
	if !ok {
		return common.ErrUnsupportedType
	}
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	for _, m := range mimes {
		if declared == m {
			return nil
		}
	}
	return common.ErrUnsupportedType
}
