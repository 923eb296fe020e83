package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level carried in a user's session.
type Role string

const (
	RoleUser  Role = "USER"
	RoleGuide Role = "GUIDE"
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates a role name. It is case-insensitive.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleGuide:
		return RoleGuide, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// User represents a user in the system
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Image     string    `json:"image" db:"image"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
