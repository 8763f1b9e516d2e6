package api

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the daemon accepts on protected routes.
//
// Tokens are issued out-of-band (the daemon has no login endpoint);
// any HS256 token signed with the configured secret is accepted.
type Claims struct {
	jwt.RegisteredClaims
}

// validateToken parses and verifies a bearer token against the
// configured JWT secret.
//
// Parameters:
//   - tokenString: Raw compact JWT from the Authorization header
//
// Returns:
//   - *Claims: Verified claims
//   - error: If the token is malformed, expired, or signed incorrectly
func (s *Server) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secCfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
