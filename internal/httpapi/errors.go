package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/interview"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind interview.Kind) int {
	switch kind {
	case interview.KindNotFound:
		return http.StatusNotFound
	case interview.KindInvalidState:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(c *gin.Context, err error) {
	var svcErr *interview.Error
	if !errors.As(err, &svcErr) {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
		return
	}

	status := statusFor(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	detail := svcErr.Msg
	if detail == "" {
		detail = svcErr.Kind.String()
	}
	c.JSON(status, ErrorResponse{Detail: detail})
}
