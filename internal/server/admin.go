package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Admin surfaces for the inventory app's operational reads.

func (s *Server) dailyChecklist(c *gin.Context) {
	entries, err := s.inventory.GetDailyChecklist(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklist": entries})
}

func (s *Server) availableDates(c *gin.Context) {
	dates, err := s.inventory.GetAvailableDates(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// seriesSales reports remote sale totals for a locally-known series.
func (s *Server) seriesSales(c *gin.Context) {
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
	if !series.ExternalRef.Valid {
		c.JSON(http.StatusOK, gin.H{"series_id": id, "units_sold": series.SoldCount, "source": "local"})
		return
	}

	sales, err := s.inventory.GetSeriesSales(c.Request.Context(), series.ExternalRef.String)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if sales == nil {
		c.JSON(http.StatusOK, gin.H{"series_id": id, "units_sold": series.SoldCount, "source": "local"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series_id": id, "units_sold": sales.UnitsSold, "source": "remote"})
}
