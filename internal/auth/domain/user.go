package domain

import "time"

// Role labels. Roles are flat strings; many users share a role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Role         string
	Verified     bool
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
