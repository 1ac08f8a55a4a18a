// Package auth issues and parses the bearer tokens that carry a session.
package auth

import (
	"errors"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carries the session id in jti, the user id in sub and the wallet
// address as a private claim.
type Claims struct {
	jwt.RegisteredClaims
	Wallet string `json:"wallet"`
}

func (c *Claims) SessionID() string { return c.ID }
func (c *Claims) UserID() string    { return c.Subject }

// GenerateToken signs an HS256 token for sess. Its expiry matches the session.
func GenerateToken(sess *models.AuthSession, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		Wallet: sess.WalletAddress,
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString. An expired but correctly signed token
// returns its claims together with ErrTokenExpired, so the caller can still
// clear the stored session.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && claims.ID != "" {
			return claims, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
