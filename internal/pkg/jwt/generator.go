// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

type Generator struct {
	secret     []byte
	issuer     string
	audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewGenerator(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// Generate creates a new signed token and returns it with its JTI.
func (g *Generator) Generate(userID int64, email string, userRoles []string, purpose string, ttl time.Duration) (string, string, error) {
	if len(g.secret) == 0 {
		return "", "", fmt.Errorf("jwt generator has empty secret")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		UserID:  userID,
		Email:   email,
		Roles:   userRoles,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(g.secret)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token carrying roles.
func (g *Generator) GenerateAccessToken(userID int64, email string, userRoles []string) (string, string, error) {
	return g.Generate(userID, email, userRoles, PurposeAccess, g.AccessTTL)
}

// GenerateRefreshToken generates a refresh token (longer TTL).
// Refresh tokens carry no roles; they are only good for minting new pairs.
func (g *Generator) GenerateRefreshToken(userID int64, email string) (string, string, error) {
	return g.Generate(userID, email, nil, PurposeRefresh, g.RefreshTTL)
}
