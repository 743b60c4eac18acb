package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) listSeries(c *gin.Context) {
	series, err := s.svc.Series().ListActive(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

// listFeaturedSeries merges the local featured packs with whatever the
// inventory app currently promotes. The remote call is a soft dependency: an
// unreachable inventory app just means no remote entries.
func (s *Server) listFeaturedSeries(c *gin.Context) {
	ctx := c.Request.Context()

	local, err := s.svc.Series().ListFeatured(ctx)
	if err != nil {
		s.handleError(c, err)
		return
	}

	remote, err := s.inventory.GetFeaturedSeries(ctx)
	if err != nil {
		remote = nil
	}

	c.JSON(http.StatusOK, gin.H{"series": local, "remote": remote})
}

func (s *Server) getSeries(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid series id"})
		return
	}
	series, err := s.svc.Series().GetByID(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
