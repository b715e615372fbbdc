package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/utils"
)

// HealthHandler reports service liveness and basic catalog stats.
type HealthHandler struct {
	catalog *service.CatalogService
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(catalog *service.CatalogService) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// GetHealth returns service status. The gold price being zero means no
// quote has been applied yet; the service is still usable.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	pctx := h.catalog.PricingContext()
	utils.Success(c, 200, "OK", gin.H{
		"status":        "healthy",
		"products":      len(h.catalog.List("")),
		"goldPriceSet":  pctx.GoldPricePerGram > 0,
		"platingFactor": pctx.PlatingFactor,
	})
}
