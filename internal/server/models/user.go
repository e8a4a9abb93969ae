// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. The password hash is opaque and must never be
// serialized into API responses.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
