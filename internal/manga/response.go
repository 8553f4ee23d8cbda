package manga

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OK writes the success envelope.
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"data": data, "message": message})
}

// Fail writes the error envelope.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// RespondError maps err onto a status code and the error envelope.
// notFound is the message used for ErrNotFound.
func RespondError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	var (
		verr *ValidationError
		ierr *InputError
	)
	switch {
	case errors.As(err, &verr):
		Fail(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &ierr):
		Fail(c, http.StatusBadRequest, ierr.Message)
	case errors.Is(err, ErrNotFound):
		Fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, ErrUpstream):
		log.Warn("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		Fail(c, http.StatusBadGateway, "Upstream service unavailable")
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
