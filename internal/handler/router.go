package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xxxsen/mslide/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Decks     *DeckHandler
	Versions  *VersionHandler
	Merges    *MergeHandler
	Library   *LibraryHandler
	Shares    *ShareHandler
	Assets    *AssetHandler
	Files     *FileHandler
	Import    *ImportHandler
	Export    *ExportHandler
	JWTSecret []byte
	// AuthRateWindow throttles register/login per client; zero disables.
	AuthRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authLimit := middleware.RateLimit(deps.AuthRateWindow)
	api.POST("/auth/register", authLimit, deps.Auth.Register)
	api.POST("/auth/login", authLimit, deps.Auth.Login)

	api.GET("/public/decks/:token", deps.Shares.PublicGet)
	api.GET("/files/:key", deps.Files.Get)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/auth/me", deps.Auth.Me)
	authGroup.PUT("/auth/password", deps.Auth.ChangePassword)

	authGroup.POST("/decks", deps.Decks.Create)
	authGroup.GET("/decks", deps.Decks.List)
	authGroup.GET("/decks/:id", deps.Decks.Get)
	authGroup.PUT("/decks/:id", deps.Decks.UpdateSettings)
	authGroup.PUT("/decks/:id/slides", deps.Decks.ReplaceSlides)
	authGroup.DELETE("/decks/:id", deps.Decks.Delete)

	authGroup.POST("/decks/:id/versions", deps.Versions.Create)
	authGroup.GET("/decks/:id/versions", deps.Versions.List)
	authGroup.GET("/decks/:id/versions/:version_id", deps.Versions.Get)
	authGroup.POST("/decks/:id/versions/:version_id/restore", deps.Versions.Restore)
	authGroup.POST("/decks/:id/versions/:version_id/milestone", deps.Versions.MarkMilestone)
	authGroup.POST("/decks/:id/versions/:version_id/branch", deps.Versions.CreateBranch)
	authGroup.GET("/decks/:id/compare", deps.Versions.Compare)
	authGroup.GET("/decks/:id/lineage", deps.Versions.GetLineage)

	authGroup.POST("/merge", deps.Merges.Merge)
	authGroup.GET("/decks/:id/conflicts", deps.Merges.ListConflicts)
	authGroup.POST("/conflicts/:conflict_id/resolve", deps.Merges.ResolveConflict)

	authGroup.POST("/library", deps.Library.Save)
	authGroup.GET("/library", deps.Library.List)
	authGroup.GET("/library/:id", deps.Library.Get)
	authGroup.DELETE("/library/:id", deps.Library.Delete)
	authGroup.POST("/library/:id/instantiate", deps.Library.Instantiate)

	authGroup.POST("/decks/:id/share", deps.Shares.Create)
	authGroup.GET("/decks/:id/share", deps.Shares.GetActive)
	authGroup.DELETE("/decks/:id/share", deps.Shares.Revoke)
	authGroup.GET("/shared", deps.Shares.List)

	authGroup.GET("/assets", deps.Assets.List)
	authGroup.GET("/assets/:id", deps.Assets.Get)
	authGroup.DELETE("/assets/:id", deps.Assets.Delete)

	authGroup.POST("/files/upload", deps.Files.Upload)
	authGroup.POST("/import/markdown", deps.Import.ImportMarkdown)
	authGroup.GET("/decks/:id/export", deps.Export.ExportMarkdown)
}
