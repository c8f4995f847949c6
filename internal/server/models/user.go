package models

import "time"

// User is a registered account. PasswordSalt and PasswordHash never leave
// the service layer.
type User struct {
	ID           string
	Email        string
	PasswordSalt []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
