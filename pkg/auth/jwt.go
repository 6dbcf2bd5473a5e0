package auth

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWT struct {
	Secret string
}

// CreateToken mints a bearer token for a subject, carrying the provider's
// object-id claim the way the identity provider does. Used by tests and
// local tooling; in production the token comes from the external provider.
func (j *JWT) CreateToken(subject string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"oid": subject,
		"sub": subject,
		"exp": time.Now().Add(time.Hour * 3).Unix(),
	})

	return token.SignedString([]byte(j.Secret))
}

func (j *JWT) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(j.Secret), nil
	})

	if err != nil {
		slog.Error("Error verifying token", "error", err)
		return nil, err
	}

	if !token.Valid {
		slog.Error("Invalid access token")
		return nil, fmt.Errorf("%v", "Invalid Access Token")
	}

	claims := token.Claims.(jwt.MapClaims)

	return claims, nil
}

// SubjectFromClaims resolves the caller's stable identifier: the provider's
// immutable object id when present, otherwise the generic subject claim.
// Empty means the token is valid but unusable for data scoping.
func SubjectFromClaims(claims jwt.MapClaims) string {
	if oid, ok := claims["oid"].(string); ok && oid != "" {
		return oid
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}

	return ""
}

func CreateJwtTokenForSubject(subject string) (string, error) {
	jwt := JWT{Secret: os.Getenv("JWT_SECRET")}
	return jwt.CreateToken(subject)
}

func VerifyJwtToken(token string) (jwt.MapClaims, error) {
	jwt := JWT{Secret: os.Getenv("JWT_SECRET")}
	return jwt.VerifyToken(token)
}
