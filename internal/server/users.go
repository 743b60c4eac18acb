package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfrey55/shackpck-sub000/internal/auth"
	"github.com/zfrey55/shackpck-sub000/internal/models"
	"github.com/zfrey55/shackpck-sub000/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// register creates an account. When the email belongs to a shadow user from a
// past guest checkout, the shadow row is promoted in place so the guest's
// orders and points stay on one identity.
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, name and a password of at least 8 characters are required"})
		return
	}
	ctx := c.Request.Context()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var user *models.User
	existing, err := s.svc.Users().GetByEmail(ctx, req.Email)
	switch {
	case err == store.ErrNotFound:
		user, err = s.svc.Users().Create(ctx, req.Email, req.Name, hash)
		if err != nil {
			s.handleError(c, err)
			return
		}
	case err != nil:
		s.handleError(c, err)
		return
	case existing.IsShadow:
		if err := s.svc.Users().PromoteShadow(ctx, existing.ID, req.Name, hash); err != nil {
			s.handleError(c, err)
			return
		}
		user, err = s.svc.Users().GetByID(ctx, existing.ID)
		if err != nil {
			s.handleError(c, err)
			return
		}
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	}

	// Best-effort mirror of the account into the inventory app
	if err := s.inventory.SyncUser(ctx, user.Email, user.Name); err != nil {
		log.Printf("failed to sync user %s: %v", user.Email, err)
	}

	token, err := auth.NewToken(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, user)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := s.svc.Users().GetByEmail(c.Request.Context(), req.Email)
	if err == store.ErrNotFound {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}
	if !user.PasswordHash.Valid || !auth.CheckPassword(user.PasswordHash.String, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.NewToken(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, user)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
