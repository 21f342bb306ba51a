package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
)

const importSource = `# Product Launch

A short walk through the launch plan.

## Opening

Welcome everyone.

> Smile at the audience.

## Roadmap

Q1 milestones.
`

func postRaw(t *testing.T, router http.Handler, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestImportMarkdownRawBody(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Iris")

	resp := postRaw(t, router, "/api/v1/import/markdown", token, "text/markdown", importSource)
	require.Equal(t, http.StatusOK, resp.Code)
	var imported deckPayload
	decodeData(t, resp, &imported)
	require.Equal(t, "Product Launch", imported.Deck.Title)
	require.Equal(t, "A short walk through the launch plan.", imported.Deck.Description)
	require.Len(t, imported.Slides, 2)
	require.Equal(t, "Opening\n\nWelcome everyone.", imported.Slides[0].Content)
	require.Equal(t, "Smile at the audience.", imported.Slides[0].Notes)
	require.Equal(t, "Roadmap\n\nQ1 milestones.", imported.Slides[1].Content)

	resp = postRaw(t, router, "/api/v1/import/markdown", token, "text/markdown", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postRaw(t, router, "/api/v1/import/markdown", token, "text/markdown", "plain prose without any headings")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrImportNoSlides, bodyCode(t, resp))
}

func TestImportMarkdownMultipart(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Miko")

	buildForm := func(filename string) (*bytes.Buffer, string) {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(importSource))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
		return buf, writer.FormDataContentType()
	}

	body, contentType := buildForm("launch.md")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/markdown", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	var imported deckPayload
	decodeData(t, resp, &imported)
	require.Len(t, imported.Slides, 2)

	body, contentType = buildForm("launch.exe")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/import/markdown", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalidFile, bodyCode(t, resp))
}

func TestExportMarkdown(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Esme")
	created := createDeck(t, router, token, "Quarterly Review 2026", []map[string]interface{}{
		{"content": "Welcome", "notes": "keep it short"},
	})
	deckID := created.Deck.ID
	slideID := created.Slides[0].ID

	v1 := createVersion(t, router, token, deckID, nil)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/decks/"+deckID+"/slides", token, map[string]interface{}{
		"slides": []map[string]interface{}{
			{"id": slideID, "content": "Revised", "notes": "keep it short"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/decks/"+deckID+"/export", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "text/markdown; charset=utf-8", resp.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="Quarterly-Review-2026.md"`, resp.Header().Get("Content-Disposition"))
	exported := resp.Body.String()
	require.Contains(t, exported, "# Quarterly Review 2026")
	require.Contains(t, exported, "## Slide 1")
	require.Contains(t, exported, "Revised")
	require.Contains(t, exported, "> keep it short")

	// a version id exports the stored snapshot, not the live deck
	resp = doJSON(t, router, http.MethodGet, "/api/v1/decks/"+deckID+"/export?version_id="+v1.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Welcome")
	require.NotContains(t, resp.Body.String(), "Revised")

	intruderToken, _ := registerUser(t, router, "Intruder")
	resp = doJSON(t, router, http.MethodGet, "/api/v1/decks/"+deckID+"/export", intruderToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
