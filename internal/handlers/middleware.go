package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	operatorIDKey = "operatorId"
	bearerPrefix  = "Bearer "
)

var (
	errMissingAuthHeader = errors.New("missing Authorization header")
	errAuthHeaderFormat  = errors.New("invalid Authorization header format")
	errTokenRejected     = errors.New("invalid or expired token")
)

// bearerOperator resolves the operator behind the request's bearer token.
func (h *Handler) bearerOperator(c *gin.Context) (int, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return 0, errMissingAuthHeader
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return 0, errAuthHeaderFormat
	}
	id, err := h.services.ParseToken(token)
	if err != nil {
		return 0, errTokenRejected
	}
	return id, nil
}

// operatorIDMiddleware guards /api/v1: every request needs a valid token.
func (h *Handler) operatorIDMiddleware(c *gin.Context) {
	id, err := h.bearerOperator(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Set(operatorIDKey, id)
	c.Next()
}

// optionalOperatorMiddleware lets anonymous requests through with no
// operator set. A request that does send credentials must send valid ones.
func (h *Handler) optionalOperatorMiddleware(c *gin.Context) {
	id, err := h.bearerOperator(c)
	switch {
	case errors.Is(err, errMissingAuthHeader):
		c.Next()
	case err != nil:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.Set(operatorIDKey, id)
		c.Next()
	}
}
