package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The session layer is the identity collaborator of the authorization
// core: it verifies credentials and token signatures, and everything
// downstream trusts only the Actor it places in context. No unverified
// claim ever reaches the core.

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetCredentialsByEmail(email string) (passwordHash string, cred *Credential, err error)
	GetCredentialByEmpID(empID int64) (*Credential, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(empID, orgID int64, email string) (token string, err error)
	GenerateRefreshToken(empID, orgID int64, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Credential is the login identity of an employee.
type Credential struct {
	EmpID    int64  `json:"emp_id"`
	OrgID    int64  `json:"org_id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	EmpID int64  `json:"emp_id"`
	OrgID int64  `json:"org_id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
