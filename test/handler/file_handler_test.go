package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mslide/internal/handler"
	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/errcode"
)

func uploadFile(t *testing.T, router http.Handler, token, filename, content string) handler.UploadResponse {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var out handler.UploadResponse
	decodeData(t, resp, &out)
	return out
}

func TestFileUploadServeAndAssets(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Uma")

	content := "speaker notes for the big talk\n"
	uploaded := uploadFile(t, router, token, "notes.txt", content)
	require.Equal(t, "notes.txt", uploaded.Name)
	require.True(t, strings.HasPrefix(uploaded.ContentType, "text/plain"))
	require.Contains(t, uploaded.URL, "/api/v1/files/")

	key := uploaded.URL[strings.LastIndex(uploaded.URL, "/")+1:]
	require.True(t, strings.HasSuffix(key, ".txt"))

	// uploads are served back without authentication
	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+key, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, content, resp.Body.String())
	require.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/no-such-key.txt", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNotFound, resp.Code)

	// every upload lands in the asset catalog
	listResp := doJSON(t, router, http.MethodGet, "/api/v1/assets", token, nil)
	require.Equal(t, http.StatusOK, listResp.Code)
	var assets struct {
		Items []model.Asset `json:"items"`
	}
	decodeData(t, listResp, &assets)
	require.Len(t, assets.Items, 1)
	require.Equal(t, key, assets.Items[0].FileKey)
	require.Equal(t, "notes.txt", assets.Items[0].Name)
	require.Equal(t, int64(len(content)), assets.Items[0].Size)

	assetID := assets.Items[0].ID
	getResp := doJSON(t, router, http.MethodGet, "/api/v1/assets/"+assetID, token, nil)
	require.Equal(t, http.StatusOK, getResp.Code)

	delResp := doJSON(t, router, http.MethodDelete, "/api/v1/assets/"+assetID, token, nil)
	require.Equal(t, http.StatusOK, delResp.Code)

	getResp = doJSON(t, router, http.MethodGet, "/api/v1/assets/"+assetID, token, nil)
	require.Equal(t, http.StatusNotFound, getResp.Code)
	require.Equal(t, errcode.ErrNotFound, bodyCode(t, getResp))
}

func TestFileUploadRequiresFile(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token, _ := registerUser(t, router, "Nora")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/files/upload", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, errcode.ErrInvalidFile, bodyCode(t, resp))
}
