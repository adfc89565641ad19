// FilePath: internal/models/models.profile.go
package models

import "time"

// Role names as stored on profiles. Every non-admin is a field agent
// whose reads are scoped to their own records.
const (
	RoleAdmin   = "admin"
	RoleMedidor = "medidor"
)

// Profile holds the application-level identity attached to an auth account.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
