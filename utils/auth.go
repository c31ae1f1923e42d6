// utils/auth.go
package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenCookie   = "token"
	ContextUserID = "userId"
	ContextRole   = "role"
)

var ErrMissingSecret = errors.New("JWT_SECRET not set")

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type JWTManager struct {
	secret []byte
	expiry time.Duration
}

func NewJWTManager(secret string, expiryHours int) *JWTManager {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &JWTManager{secret: []byte(secret), expiry: time.Duration(expiryHours) * time.Hour}
}

func (m *JWTManager) Expiry() time.Duration { return m.expiry }

func (m *JWTManager) GenerateToken(userID string, role int) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  now.Add(m.expiry).Unix(),
		"iat":  now.Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *JWTManager) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware accepts a bearer token or the session cookie.
func (m *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if len(tokenString) > 7 && strings.EqualFold(tokenString[0:6], "bearer") {
			tokenString = tokenString[7:]
		}
		if tokenString == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, 401, "Authorization required")
			return
		}

		claims, err := m.parse(tokenString)
		if err != nil {
			RespondWithError(c, 401, "Invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(float64)
		c.Set(ContextUserID, sub)
		c.Set(ContextRole, int(role))
		c.Next()
	}
}
