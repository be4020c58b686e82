package domain

import "time"

// Role distinguishes farmer and consumer accounts.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleConsumer Role = "consumer"
)

// Valid reports whether r is one of the known roles. The match is exact.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleConsumer
}

// Profile is the identity record kept next to the session token.
type Profile struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	ID       int64  `json:"id"`
}

// AuthState is derived from the session store on every check and never cached.
type AuthState struct {
	Authenticated bool
	User          *Profile
}

// Role returns the role of the current user, or "" when no profile is available.
func (s AuthState) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// User models an account held by the auth backend.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile returns the client-facing identity of u.
func (u *User) Profile() Profile {
	return Profile{Username: u.Username, Role: u.Role, ID: u.ID}
}
