package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/utils"
	"github.com/precifica/precifica_api/pkg/githubfs"
)

// SyncHandler exposes the manual pull/push endpoints for the remote file
// store. Neither operation retries automatically; the client re-invokes
// them after resolving the reported condition.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// Pull replaces the local product list with the remote file's contents.
func (h *SyncHandler) Pull(c *gin.Context) {
	result, err := h.sync.Pull(c.Request.Context())
	if err != nil {
		writeSyncError(c, err)
		return
	}
	utils.Success(c, 200, "Pulled product list from remote", result)
}

// Push uploads the local product list to the remote file.
func (h *SyncHandler) Push(c *gin.Context) {
	sha, err := h.sync.Push(c.Request.Context())
	if err != nil {
		writeSyncError(c, err)
		return
	}
	utils.Success(c, 200, "Pushed product list to remote", gin.H{"sha": sha})
}

// writeSyncError maps sync failures onto the API error taxonomy. A stale
// version token is a distinct conflict the client resolves by pulling
// first; everything else from the file store is a generic remote error.
func writeSyncError(c *gin.Context, err error) {
	var remoteErr *githubfs.RemoteError
	switch {
	case errors.Is(err, utils.ErrRemoteNotConfigured):
		utils.Error(c, 400, "REMOTE_NOT_CONFIGURED", "Configure the remote repository and token before syncing")
	case errors.Is(err, githubfs.ErrConflict):
		utils.Error(c, 409, "SYNC_CONFLICT", "Remote file changed since last sync; pull before pushing again")
	case errors.As(err, &remoteErr):
		utils.Error(c, 502, "REMOTE_ERROR", remoteErr.Error())
	default:
		utils.Error(c, 502, "REMOTE_PARSE_ERROR", err.Error())
	}
}
