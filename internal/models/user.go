package models

const (
	// RoleUser is the default role.
	RoleUser = "user"
	// RoleAdmin may manage other accounts.
	RoleAdmin = "admin"
)

// AdminIdentity is the literal username of the bootstrap administrator.
const AdminIdentity = "admin"

// User is an account of the dashboard. Email holds either an e-mail address
// or the literal username "admin".
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DummyUser is the new-user form as it arrives in a JSON request.
type DummyUser struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,min=5"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// PasswordReset is the body of the admin password reset request.
type PasswordReset struct {
	Password string `json:"password" validate:"required,min=5"`
}

// LoginRequest is the body of the login request. Identity is an e-mail
// address or the literal username "admin".
type LoginRequest struct {
	Identity string `json:"identity" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}
