package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PlayerClaims binds a token to one game. The holder plays whichever side
// the human has in that game, so restarts never invalidate it.
type PlayerClaims struct {
	GameID string `json:"game_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates player tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// GeneratePlayerToken creates a token allowing its holder to move in gameID.
func (i *TokenIssuer) GeneratePlayerToken(gameID string) (string, error) {
	now := time.Now()
	claims := &PlayerClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   gameID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidatePlayerToken validates a player token and returns the claims
func (i *TokenIssuer) ValidatePlayerToken(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*PlayerClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
