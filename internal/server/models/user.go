// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Email and WalletAddress are stored
// lower-cased. EncryptedAPIKey holds a cryptox token, or nil when unset.
type User struct {
	ID              string
	Email           string
	WalletAddress   string
	EncryptedAPIKey *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAPIKey reports whether an encrypted API key is stored.
func (u *User) HasAPIKey() bool {
	return u.EncryptedAPIKey != nil && *u.EncryptedAPIKey != ""
}
