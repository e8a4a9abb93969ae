package models

import "time"

// File describes metadata for an uploaded blob. The bytes themselves live in
// object storage under StorageKey; the row only carries the locator.
//
// IsShared and ShareToken are always updated together: a file is shared
// exactly when it has a non-empty share token, and re-sharing replaces the
// stored token, which invalidates any previously issued share link.
type File struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"-"`
	StorageKey string    `json:"-"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	IsShared   bool      `json:"is_shared"`
	ShareToken string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
