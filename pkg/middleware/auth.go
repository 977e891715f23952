package middleware

import (
	"strings"

	"postfeed/pkg/apperr"
	"postfeed/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie set on login and accepted in place of the header.
const AccessTokenCookie = "accessToken"

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			apperr.Respond(c, apperr.Unauthorized("Unauthorized request"))
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Invalid access token"))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
