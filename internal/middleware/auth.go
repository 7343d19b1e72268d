package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bourse/internal/config"
	"bourse/internal/models"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in a player token
type JWTClaims struct {
	PlayerID uint   `json:"player_id"`
	TeamName string `json:"team_name"`
	jwt.RegisteredClaims
}

// GenerateToken generates a session token for a player. Tokens expire after
// the configured duration so a team cannot carry a session into the next game.
func GenerateToken(player *models.Player) (string, error) {
	claims := &JWTClaims{
		PlayerID: player.ID,
		TeamName: player.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "bourse-api",
			Subject:   fmt.Sprintf("%d", player.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// AuthMiddleware verifies the JWT token and sets the player in the context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return getJWTKey(), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("playerID", claims.PlayerID)
		c.Set("teamName", claims.TeamName)
		c.Next()
	}
}

// AdminMiddleware guards the game-master console with HTTP basic auth checked
// against a bcrypt hash from configuration. With no hash configured the
// console is disabled entirely.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.Get()
		if cfg.AdminPasswordHash == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin console is not configured"})
			c.Abort()
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || username != cfg.AdminUsername {
			c.Header("WWW-Authenticate", `Basic realm="bourse admin"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin credentials required"})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)); err != nil {
			c.Header("WWW-Authenticate", `Basic realm="bourse admin"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin credentials required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
