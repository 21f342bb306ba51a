package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/internal/service"
)

func TestShareHandlersPublicFlow(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Casey Author")
	created := createDeck(t, router, token, "conference talk", []map[string]interface{}{
		{"content": "hello world"},
	})
	deckID := created.Deck.ID

	resp := doJSON(t, router, http.MethodGet, "/api/v1/decks/"+deckID+"/share", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var current struct {
		Share *model.Share `json:"share"`
	}
	decodeData(t, resp, &current)
	require.Nil(t, current.Share)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/decks/"+deckID+"/share", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var share model.Share
	decodeData(t, resp, &share)
	require.NotEmpty(t, share.Token)

	// the public endpoint needs no bearer token
	resp = doJSON(t, router, http.MethodGet, "/api/v1/public/decks/"+share.Token, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var public service.PublicDeckDetail
	decodeData(t, resp, &public)
	require.Equal(t, "conference talk", public.Deck.Title)
	require.Equal(t, "Casey Author", public.Author)
	require.Len(t, public.Slides, 1)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/shared", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var shared struct {
		Items []repo.SharedDeck `json:"items"`
	}
	decodeData(t, resp, &shared)
	require.Len(t, shared.Items, 1)
	require.Equal(t, share.Token, shared.Items[0].Token)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/decks/"+deckID+"/share", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/public/decks/"+share.Token, "", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, errcode.ErrNotFound, bodyCode(t, resp))
}
