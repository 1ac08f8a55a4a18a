package models

import "time"

type AuthSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	WalletAddress string    `json:"wallet_address"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
