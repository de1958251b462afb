package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/modusklar/modusklar/config"
)

// Claims carries the session identity. Participant tokens hold UserID and
// Name; admin tokens hold AdminEmail only. These are the same two values
// the browser clients previously kept in local storage.
type Claims struct {
	UserID     uint   `json:"user_id,omitempty"`
	Name       string `json:"name,omitempty"`
	AdminEmail string `json:"admin_email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserToken issues a participant session token.
func GenerateUserToken(userID uint, name string, duration time.Duration) (string, error) {
	return sign(Claims{UserID: userID, Name: name}, duration)
}

// GenerateAdminToken issues a review-console session token.
func GenerateAdminToken(email string, duration time.Duration) (string, error) {
	return sign(Claims{AdminEmail: email}, duration)
}

func sign(claims Claims, duration time.Duration) (string, error) {
	cfg := config.Get()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
