// Package models defines the server-side domain records.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialized to clients.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
