package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" bson:"username" db:"username"`

	// Email is the user's email address.
	Email string `json:"email" bson:"email" db:"email"`

	// Role indicates the user's authorization level or role
	// within the system (e.g., "admin", "user").
	Role string `json:"role" bson:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password_hash" db:"password_hash"`

	// IsVerified reports whether the user confirmed their email address.
	IsVerified bool `json:"is_verified" bson:"is_verified" db:"is_verified"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`

	// LastLogin is the timestamp of the user's most recent login.
	// It is nil for accounts that never logged in.
	LastLogin *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty" db:"last_login"`
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
