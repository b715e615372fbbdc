package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/utils"
)

// SettingsHandler manages the plating factor and the remote descriptor.
type SettingsHandler struct {
	catalog *service.CatalogService
	sync    *service.SyncService
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(catalog *service.CatalogService, sync *service.SyncService) *SettingsHandler {
	return &SettingsHandler{catalog: catalog, sync: sync}
}

// GetFactor returns the current plating factor.
func (h *SettingsHandler) GetFactor(c *gin.Context) {
	utils.Success(c, 200, "Plating factor", gin.H{
		"platingFactor": h.catalog.PricingContext().PlatingFactor,
	})
}

// UpdateFactor sets the plating factor and recomputes the whole grid.
func (h *SettingsHandler) UpdateFactor(c *gin.Context) {
	var req struct {
		PlatingFactor float64 `json:"platingFactor" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "platingFactor must be a positive number")
		return
	}

	h.catalog.SetPlatingFactor(c.Request.Context(), req.PlatingFactor)
	utils.Success(c, 200, "Plating factor updated", gin.H{"platingFactor": req.PlatingFactor})
}

// remoteSettings is the outward shape of the descriptor; the token is
// never echoed back, only whether one is stored.
type remoteSettings struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Path     string `json:"path"`
	HasToken bool   `json:"hasToken"`
	LastSHA  string `json:"lastSha,omitempty"`
}

func toRemoteSettings(d models.RemoteDescriptor) remoteSettings {
	return remoteSettings{
		Owner:    d.Owner,
		Repo:     d.Repo,
		Path:     d.Path,
		HasToken: d.Token != "",
		LastSHA:  d.LastSHA,
	}
}

// GetRemote returns the remote file store settings.
func (h *SettingsHandler) GetRemote(c *gin.Context) {
	utils.Success(c, 200, "Remote settings", gin.H{
		"remote": toRemoteSettings(h.sync.Descriptor()),
	})
}

// UpdateRemote replaces the remote file store settings.
func (h *SettingsHandler) UpdateRemote(c *gin.Context) {
	var req struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
		Path  string `json:"path"`
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Path == "" {
		req.Path = "precifica_db.json"
	}

	if err := h.sync.UpdateDescriptor(c.Request.Context(), req.Owner, req.Repo, req.Path, req.Token); err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to save remote settings")
		return
	}
	utils.Success(c, 200, "Remote settings updated", gin.H{
		"remote": toRemoteSettings(h.sync.Descriptor()),
	})
}
