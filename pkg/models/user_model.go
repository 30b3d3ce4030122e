package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/pkg"
)

// User maps to table `users`
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         pkg.Role
	CreatedAt    time.Time
}
