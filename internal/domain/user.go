package domain

import "time"

// User is an authenticated actor.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Group is a named set of users referenced by transition edges and
// responsible-group assignments.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
