package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that can authenticate and hold refresh-token families.
type User struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	Email        string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:100;not null"`
	Name         string `json:"name" gorm:"size:255"`
	Role         Role   `json:"role" gorm:"size:32;not null;default:user"`

	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roles returns the role set carried in access-token claims.
// Single-valued today; the claim is a list so adding roles later is not a
// breaking token change.
func (u *User) Roles() []string {
	return []string{string(u.Role)}
}
