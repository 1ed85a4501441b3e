// Package http exposes the portfolio query over a gin router.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/application"
	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
)

// PortfolioHandler serves username resolution requests.
type PortfolioHandler struct {
	queries *application.QueryService
}

// NewPortfolioHandler creates the handler.
func NewPortfolioHandler(queries *application.QueryService) *PortfolioHandler {
	return &PortfolioHandler{queries: queries}
}

// RegisterRoutes mounts the query API.
func (h *PortfolioHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/investors/:username/portfolio", h.GetPortfolio)
	}
}

type holdingResponse struct {
	Account      *domain.Account      `json:"account"`
	SecurityLots []domain.SecurityLot `json:"security_lots"`
}

type portfolioResponse struct {
	Investor  *domain.Investor          `json:"investor"`
	Holdings  []holdingResponse         `json:"holdings"`
	Warnings  []domain.IntegrityWarning `json:"warnings,omitempty"`
	ElapsedMS float64                   `json:"elapsed_ms"`
}

// GetPortfolio resolves one username to its full portfolio view.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	username := c.Param("username")

	view, err := h.queries.Portfolio(c.Request.Context(), username)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no investor found with username: " + username})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrStoreUnavailable):
			logging.Error(c.Request.Context(), "store unavailable during query", "username", username, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		default:
			logging.Error(c.Request.Context(), "portfolio query failed", "username", username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	resp := portfolioResponse{
		Investor:  view.Investor,
		Holdings:  make([]holdingResponse, 0, len(view.Holdings)),
		Warnings:  view.Warnings,
		ElapsedMS: float64(view.Elapsed.Microseconds()) / 1000.0,
	}
	for _, holding := range view.Holdings {
		resp.Holdings = append(resp.Holdings, holdingResponse{
			Account:      holding.Account,
			SecurityLots: holding.Lots,
		})
	}
	c.JSON(http.StatusOK, resp)
}
