package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/pkg/response"
)

// callerAddressKey is the gin context key carrying the authenticated
// caller address.
const callerAddressKey = "caller_address"

// Auth validates the Bearer token and stores the caller address in the
// request context. The token's address claim is the sole caller
// identity; role checks happen in the service layer against the ledger.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "Missing authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			response.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		rawAddress, _ := claims["address"].(string)
		address, err := domain.ParseAddress(rawAddress)
		if err != nil {
			response.Unauthorized(c, "Invalid address claim")
			c.Abort()
			return
		}

		c.Set(callerAddressKey, address)
		c.Next()
	}
}

// CallerAddress returns the authenticated caller address from the
// context. The zero address means the request skipped Auth.
func CallerAddress(c *gin.Context) domain.Address {
	value, exists := c.Get(callerAddressKey)
	if !exists {
		return domain.ZeroAddress
	}
	address, ok := value.(domain.Address)
	if !ok {
		return domain.ZeroAddress
	}
	return address
}

// IssueToken signs an access token binding the given address.
func IssueToken(secret string, address domain.Address, expiry time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     address.String(),
		"address": address.String(),
		"exp":     time.Now().Add(expiry).Unix(),
		"iat":     time.Now().Unix(),
	})
	return token.SignedString([]byte(secret))
}
