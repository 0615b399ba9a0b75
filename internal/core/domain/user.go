package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	IsEmailVerified  bool
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicProfile is the client-facing projection of a user.
type PublicProfile struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	IsEmailVerified  bool   `json:"isEmailVerified"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

// Profile returns the public projection. The password hash is never included.
func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		IsEmailVerified:  u.IsEmailVerified,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}

// PasswordContext carries user attributes a password must not be derived from.
type PasswordContext struct {
	Name  string
	Email string
}
