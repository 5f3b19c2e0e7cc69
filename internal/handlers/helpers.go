package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskly/internal/apperrors"
	"taskly/internal/authz"
	"taskly/internal/models"
)

// getCaller reads the identity the auth middleware put on the context.
func getCaller(c *gin.Context) authz.Caller {
	var caller authz.Caller
	if v, ok := c.Get("user_id"); ok {
		switch t := v.(type) {
		case int64:
			caller.ID = t
		case int:
			caller.ID = int64(t)
		case float64:
			caller.ID = int64(t)
		}
	}
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			caller.Role = models.Role(s)
		}
	}
	return caller
}

func getJTI(c *gin.Context) string {
	if v, ok := c.Get("jti"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// respondError maps domain error kinds onto HTTP statuses. Unknown
// errors become opaque 500s so internals do not leak.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, err.Error()
	case apperrors.Is(err, apperrors.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case apperrors.Is(err, apperrors.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case apperrors.Is(err, apperrors.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case apperrors.Is(err, apperrors.ErrExpired):
		status, msg = http.StatusGone, err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
