package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/domain"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var domainErr domain.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr {
	case domain.ErrGameNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidToken:
		return http.StatusUnauthorized
	case domain.ErrNotYourTurn, domain.ErrGameFinished, domain.ErrCellOccupied:
		return http.StatusConflict
	case domain.ErrOutOfBounds, domain.ErrInvalidMove, domain.ErrMalformedBoard:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
