package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type MergeHandler struct {
	versions *service.VersionService
}

func NewMergeHandler(versions *service.VersionService) *MergeHandler {
	return &MergeHandler{versions: versions}
}

type mergeRequest struct {
	SourceDeckID string   `json:"source_deck_id"`
	TargetDeckID string   `json:"target_deck_id"`
	Strategy     string   `json:"strategy"`
	SlideIDs     []string `json:"slide_ids"`
}

type resolveConflictRequest struct {
	Choice string `json:"choice"`
}

func (h *MergeHandler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.versions.Merge(c.Request.Context(), getUserID(c), service.MergeInput{
		SourceDeckID: req.SourceDeckID,
		TargetDeckID: req.TargetDeckID,
		Strategy:     req.Strategy,
		SlideIDs:     req.SlideIDs,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *MergeHandler) ListConflicts(c *gin.Context) {
	onlyPending := c.Query("pending") == "1"
	items, err := h.versions.ListConflicts(c.Request.Context(), getUserID(c), c.Param("id"), onlyPending)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *MergeHandler) ResolveConflict(c *gin.Context) {
	var req resolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	conflict, err := h.versions.ResolveConflict(c.Request.Context(), getUserID(c), c.Param("conflict_id"), req.Choice)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, conflict)
}
