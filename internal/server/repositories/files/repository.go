package files

import (
	"context"

	"filedrop/internal/server/models"
)

// Repository persists file metadata. Every owner-restricted method carries
// the owner id in its query predicate; ownership is never filtered after the
// fact, so "not yours" and "does not exist" are indistinguishable.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.File, error)
	// GetByID is used only by the unauthenticated share-redemption path.
	GetByID(ctx context.Context, id int64) (*models.File, error)
	// SetShareToken flips is_shared and replaces the stored token in one
	// statement, scoped to the owner.
	SetShareToken(ctx context.Context, id, ownerID int64, token string) error
	// DeleteByIDAndOwner removes the row and returns the storage key of the
	// deleted file so the caller can clean up the backing object.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID int64) (string, error)
}
