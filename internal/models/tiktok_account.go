package models

import "time"

// TikTokAccount is a set of TikTok credentials owned by a user.
// PasswordHash is a bcrypt hash; the plaintext only ever goes to the automation subsystem.
type TikTokAccount struct {
	ID           string
	Username     string
	PasswordHash string
	Country      string
	Proxy        *string
	OwnerID      string
	CreatedAt    time.Time
}
