package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/mslide/internal/config"
	"github.com/xxxsen/mslide/internal/filestore"
	"github.com/xxxsen/mslide/internal/handler"
	"github.com/xxxsen/mslide/internal/metrics"
	"github.com/xxxsen/mslide/internal/middleware"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/internal/service"
	"github.com/xxxsen/mslide/test/testutil"
)

// promauto collectors register globally once per process.
var testMetrics = metrics.New()

func setupRouter(t *testing.T) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	deckRepo := repo.NewDeckRepo(db)
	slideRepo := repo.NewSlideRepo(db)
	versionRepo := repo.NewVersionRepo(db)
	lineageRepo := repo.NewLineageRepo(db)
	conflictRepo := repo.NewConflictRepo(db)
	shareRepo := repo.NewShareRepo(db)
	libraryRepo := repo.NewLibraryRepo(db)
	assetRepo := repo.NewAssetRepo(db)

	jwtSecret := []byte("test-secret")
	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour)
	deckService := service.NewDeckService(db, deckRepo, slideRepo, shareRepo, userRepo)
	versionService := service.NewVersionService(db, deckRepo, slideRepo, versionRepo, lineageRepo, conflictRepo, userRepo, testMetrics, 0, 0)
	libraryService := service.NewLibraryService(libraryRepo, deckService)
	assetService := service.NewAssetService(assetRepo)
	importService := service.NewImportService(deckService)
	exportService := service.NewExportService(deckService, versionService)

	tmpDir, err := os.MkdirTemp("", "mslide-upload-*")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": tmpDir,
		},
	})
	require.NoError(t, err)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Decks:     handler.NewDeckHandler(deckService),
		Versions:  handler.NewVersionHandler(versionService),
		Merges:    handler.NewMergeHandler(versionService),
		Library:   handler.NewLibraryHandler(libraryService),
		Shares:    handler.NewShareHandler(deckService),
		Assets:    handler.NewAssetHandler(assetService),
		Files:     handler.NewFileHandler(store, assetService, 20*1024*1024),
		Import:    handler.NewImportHandler(importService, 20*1024*1024),
		Export:    handler.NewExportHandler(exportService),
		JWTSecret: jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 0, envelope.Code)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func bodyCode(t *testing.T, resp *httptest.ResponseRecorder) int {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Code
}

// registerUser signs up a fresh account and returns its bearer token.
func registerUser(t *testing.T, router http.Handler, name string) (string, string) {
	t.Helper()
	email := testutil.NewID() + "@example.com"
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var out struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token, email
}
