package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginPortal identifies which login entry point a request used.
type LoginPortal string

const (
	PortalAdmin LoginPortal = "admin"
	PortalStaff LoginPortal = "staff"
)

// Allows reports whether user may sign in through the portal. Admins and superusers
// use the admin portal whatever their role; plain staff use the staff portal.
func (p LoginPortal) Allows(user *User) bool {
	switch p {
	case PortalAdmin:
		return user.IsAdmin()
	case PortalStaff:
		return user.IsStaff() && !user.IsAdmin()
	default:
		return false
	}
}

// PortalFor returns the portal a user is expected to use.
func PortalFor(user *User) LoginPortal {
	if user.IsAdmin() {
		return PortalAdmin
	}
	return PortalStaff
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Role        UserRole `json:"role"`
	IsSuperuser bool     `json:"is_superuser"`
	IsAdmin     bool     `json:"is_admin"`
}

// NewUserInfo projects a user for responses.
func NewUserInfo(u *User) UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, IsSuperuser: u.IsSuperuser, IsAdmin: u.IsAdmin()}
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role"`
	IsSuperuser bool     `json:"is_superuser,omitempty"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	jwt.RegisteredClaims
}

// IsAdmin applies the admin predicate to token claims.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && (c.IsSuperuser || c.Role == RoleAdmin)
}

// IsStaffOrAdmin applies the staff-or-admin predicate to token claims.
func (c *JWTClaims) IsStaffOrAdmin() bool {
	return c != nil && (c.IsAdmin() || c.Role == RoleStaff)
}

// RefreshToken represents a persisted refresh token session.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"token"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
}
