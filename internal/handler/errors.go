package handler

import (
	"errors"
	"net/http"

	"estimatehub/internal/service"
	"estimatehub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps service errors onto the response envelope: missing rows
// and expired sessions are 404, failed mirrored writes are 502 (the client
// shows a transient notification and may retry), everything else is the
// caller's fault.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrGateway):
		status = http.StatusBadGateway
	}
	c.JSON(status, response.Error(status, err.Error()))
}
