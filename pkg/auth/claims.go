package auth

import "github.com/golang-jwt/jwt/v5"

// Role gates access to the admin surface.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// AccessTokenPayload is the caller-supplied portion of a minted token.
type AccessTokenPayload struct {
	Email string
	Role  Role
	JTI   string
}

// AccessTokenClaims is the full claim set carried by access tokens.
type AccessTokenClaims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}
