package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/cliflow/cliflow_backend/models"
)

// GenerateToken mints a signed bearer token for a user. The subject claim
// carries the user's email, which is what the verifier resolves back to a
// user row. Issuance is otherwise an external concern; this exists for
// tooling and the test suite.
func GenerateToken(cfg Config, user models.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = user.Email
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(cfg.TokenTTL).Unix()
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken verifies the signature and expiry of a bearer token and returns
// its claims. The "Bearer " prefix is tolerated.
func ParseToken(cfg Config, tokenString string) (jwt.MapClaims, error) {
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SubjectFromClaims extracts the subject (user email) from parsed claims.
func SubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token has no subject claim")
	}
	return sub, nil
}
