package domain

import (
	"strconv"
	"time"
)

// Role is a user's permission tier
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// CanWrite reports whether the role may create or edit pages
func (r Role) CanWrite() bool {
	return r == RoleEditor || r == RoleAdmin
}

// User represents an account
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null;default:'viewer';index" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Requester identifies who is calling. The zero value is an anonymous caller.
type Requester struct {
	UserID        uint64
	Username      string
	Role          Role
	Authenticated bool
}

// Anonymous returns an unauthenticated requester
func Anonymous() Requester {
	return Requester{}
}

// RequesterFromUser builds an authenticated requester
func RequesterFromUser(u *User) Requester {
	return Requester{UserID: u.ID, Username: u.Username, Role: u.Role, Authenticated: true}
}

func (r Requester) IsAdmin() bool {
	return r.Authenticated && r.Role == RoleAdmin
}

func (r Requester) IsEditor() bool {
	return r.Authenticated && r.Role == RoleEditor
}

// IDString returns the user ID for logging
func (r Requester) IDString() string {
	if !r.Authenticated {
		return ""
	}
	return strconv.FormatUint(r.UserID, 10)
}

// CreateUserRequest is the admin user creation payload
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-registration payload. Token is required unless no users exist yet.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Token    string `json:"token"`
}

// AuthResponse carries an access token and the signed-in user
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}
