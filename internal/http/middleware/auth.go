package middleware

import (
	"net/http"
	"strings"

	"spot_difference/internal/service"

	"github.com/gin-gonic/gin"
)

// ключ контекста gin с именем игрока
const ContextUsername = "username"

// AuthRequired проверяет Bearer токен и кладёт имя игрока в контекст
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		username, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUsername, username)
		c.Next()
	}
}

// AdminOnly пропускает только администратора; ставится после AuthRequired
func AdminOnly(adminUsername string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := GetUsername(c)
		if !ok || adminUsername == "" || !strings.EqualFold(username, adminUsername) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// GetUsername достаёт имя игрока, положенное AuthRequired
func GetUsername(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUsername)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok && username != ""
}
