package models

import (
	"time"
)

// User is an operator of the control panel. Username is the login handle.
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	IsActive            bool
	IsAdmin             bool
	LastLogin           *time.Time // Stamped on every verification attempt, successful or not
	FailedLoginAttempts int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
