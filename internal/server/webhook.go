package server

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// paymentWebhook receives processor callbacks. It always acknowledges with
// 200: a non-2xx answer would make the processor retry forever into a
// half-handled state. Failures are logged instead.
func (s *Server) paymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("webhook: failed to read payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	sig := c.GetHeader("Webhook-Signature")
	if err := s.svc.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		log.Printf("webhook: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
