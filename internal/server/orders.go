package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfrey55/shackpck-sub000/internal/checkout"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type validateCartRequest struct {
	Items []models.CartItem `json:"items" binding:"required"`
}

func (s *Server) validateCart(c *gin.Context) {
	var req validateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	items, err := s.svc.ValidateCart(c.Request.Context(), req.Items, currentUser(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"subtotal": checkout.Subtotal(items),
	})
}

func (s *Server) createIntent(c *gin.Context) {
	var in checkout.IntentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	user := currentUser(c)
	if user == nil && !s.cfg.Flags.DirectPurchaseEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "guest checkout is temporarily disabled"})
		return
	}

	result, err := s.svc.CreateIntent(c.Request.Context(), in, user)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) createOrder(c *gin.Context) {
	var in checkout.CommitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	user := currentUser(c)
	if user == nil && !s.cfg.Flags.DirectPurchaseEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "guest checkout is temporarily disabled"})
		return
	}

	order, err := s.svc.CommitOrder(c.Request.Context(), in, user)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"order_id":  order.ID,
		"reference": order.Reference,
	})
}

func (s *Server) listOrders(c *gin.Context) {
	user := currentUser(c)
	orders, err := s.svc.Orders().ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	user := currentUser(c)
	order, err := s.svc.Orders().GetByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	if order.UserID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your order"})
		return
	}
	order.Items, err = s.svc.Orders().ListItems(c.Request.Context(), order.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
