package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/utils"
)

// GoldHandler exposes the gold price widget data and a manual refresh.
type GoldHandler struct {
	catalog *service.CatalogService
	feed    *service.PriceFeedService
}

// NewGoldHandler constructs a GoldHandler.
func NewGoldHandler(catalog *service.CatalogService, feed *service.PriceFeedService) *GoldHandler {
	return &GoldHandler{catalog: catalog, feed: feed}
}

// GetQuote returns the last applied gold quote.
func (h *GoldHandler) GetQuote(c *gin.Context) {
	quote := h.catalog.GoldQuote()
	if quote == nil {
		utils.Error(c, 404, "NO_QUOTE", "No gold quote fetched yet")
		return
	}
	utils.Success(c, 200, "Gold quote", gin.H{"quote": quote})
}

// Refresh triggers an immediate price feed fetch. Unlike the background
// tick, a manual refresh reports its failure to the caller.
func (h *GoldHandler) Refresh(c *gin.Context) {
	quote, err := h.feed.Refresh(c.Request.Context())
	if err != nil {
		utils.Error(c, 502, "FEED_ERROR", "Failed to fetch gold quote; previous price still in effect")
		return
	}
	utils.Success(c, 200, "Gold price refreshed", gin.H{"quote": quote})
}
