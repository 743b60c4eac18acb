package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfrey55/shackpck-sub000/internal/checkout"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
)

type Server struct {
	router    *gin.Engine
	db        *database.DB
	cfg       *config.Config
	svc       *checkout.Service
	inventory inventory.Client
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *database.DB, svc *checkout.Service, inv inventory.Client) *Server {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	server := &Server{
		router:    router,
		db:        db,
		cfg:       cfg,
		svc:       svc,
		inventory: inv,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		api.GET("/series", s.listSeries)
		api.GET("/series/featured", s.listFeaturedSeries)
		api.GET("/series/:id", s.getSeries)

		api.POST("/cart/validate", s.checkoutEnabled(), s.authOptional(), s.validateCart)
		api.POST("/checkout/intent", s.checkoutEnabled(), s.authOptional(), s.createIntent)
		api.POST("/orders", s.checkoutEnabled(), s.authOptional(), s.createOrder)
		api.GET("/orders", s.authRequired(), s.listOrders)
		api.GET("/orders/:ref", s.authRequired(), s.getOrder)

		api.GET("/addresses", s.authRequired(), s.listAddresses)
		api.POST("/addresses", s.authRequired(), s.createAddress)
		api.PUT("/addresses/:id/default", s.authRequired(), s.setDefaultAddress)
		api.DELETE("/addresses/:id", s.authRequired(), s.deleteAddress)

		api.POST("/users/register", s.accountsEnabled(), s.register)
		api.POST("/users/login", s.accountsEnabled(), s.login)

		api.POST("/webhooks/payments", s.paymentWebhook)

		admin := api.Group("/admin", s.authRequired(), s.adminRequired())
		{
			admin.GET("/checklist", s.dailyChecklist)
			admin.GET("/available-dates", s.availableDates)
			admin.GET("/series/:id/sales", s.seriesSales)
		}
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	// Check database health
	if err := s.db.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shackpck",
		"version": "0.1.0",
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
