package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zfrey55/shackpck-sub000/internal/models"
)

type addressRequest struct {
	Name       string `json:"name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country"`
}

func (s *Server) listAddresses(c *gin.Context) {
	user := currentUser(c)
	addresses, err := s.svc.Addresses().ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (s *Server) createAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	country := req.Country
	if country == "" {
		country = "US"
	}

	user := currentUser(c)
	addr := models.Address{
		UserID:     user.ID,
		Name:       req.Name,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    country,
	}
	if err := s.svc.Addresses().Create(c.Request.Context(), &addr); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

func (s *Server) setDefaultAddress(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	user := currentUser(c)
	if err := s.svc.Addresses().SetDefault(c.Request.Context(), user.ID, id); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteAddress(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	user := currentUser(c)
	if err := s.svc.Addresses().Delete(c.Request.Context(), user.ID, id); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
