package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Username  string    `json:"username" db:"username" example:"jdoe"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	Role      Role      `json:"role" db:"role" example:"STUDENT"`
	PersonID  *int64    `json:"personId,omitempty" db:"person_id"` // nil for admins
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relation (populated when needed)
	Person *Person `json:"person,omitempty"`
}
