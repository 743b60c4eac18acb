package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfrey55/shackpck-sub000/internal/checkout"
	"github.com/zfrey55/shackpck-sub000/internal/store"
)

// handleError maps workflow errors to REST status codes. Validation failures
// carry itemized messages; everything unexpected collapses to a generic 500,
// with diagnostic detail only outside production.
func (s *Server) handleError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Items})
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrGuestEmailRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPaymentNotSucceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		body := gin.H{"error": "internal server error"}
		if !s.cfg.Server.IsProduction() {
			body["detail"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
