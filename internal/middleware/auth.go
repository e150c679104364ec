package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sergio129/SaludDirecta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	jwt.RegisteredClaims
}

func abortUnauthorized(c *gin.Context, detalle string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		apierror.New(apierror.KindUnauthorized, detalle))
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// JWTAuth validates the Bearer token on every protected route. Only HS256
// is accepted; tokens signed with any other method are rejected outright.
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Autenticación requerida")
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims,
			func(*jwt.Token) (interface{}, error) { return key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			abortUnauthorized(c, "Sesión expirada")
			return
		case err != nil || !token.Valid:
			abortUnauthorized(c, "Token inválido")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				apierror.New(apierror.KindUnauthorized, "Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the typed claims stored by JWTAuth.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}
