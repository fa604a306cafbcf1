package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
	"github.com/iamasit07/five-in-a-row/backend/pkg/auth"
	"github.com/iamasit07/five-in-a-row/backend/pkg/httputil"
)

const claimsKey = "player_claims"

// PlayerAuthMiddleware validates the player token (header or query) and
// stores its claims on the context.
func PlayerAuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidToken.Error()})
			return
		}

		claims, err := tokens.ValidatePlayerToken(tokenString)
		if err != nil {
			log.Printf("[AUTH] Rejected player token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidToken.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*auth.PlayerClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.PlayerClaims)
	return claims, ok
}
