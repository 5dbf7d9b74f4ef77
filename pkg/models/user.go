package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Role names match the "role" claim issued by the identity
// provider.
const (
	RoleStudent = "student"
	RoleSponsor = "sponsor"
	RoleAdmin   = "admin"
)

// User account status values used by admin moderation.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User mirrors the identity provider's account record for local joins.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
