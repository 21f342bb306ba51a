package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type ShareHandler struct {
	decks *service.DeckService
}

func NewShareHandler(decks *service.DeckService) *ShareHandler {
	return &ShareHandler{decks: decks}
}

func (h *ShareHandler) Create(c *gin.Context) {
	share, err := h.decks.CreateShare(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, share)
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.decks.RevokeShare(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ShareHandler) GetActive(c *gin.Context) {
	share, err := h.decks.GetActiveShare(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"share": share})
}

func (h *ShareHandler) PublicGet(c *gin.Context) {
	detail, err := h.decks.GetShareByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *ShareHandler) List(c *gin.Context) {
	items, err := h.decks.ListShared(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
