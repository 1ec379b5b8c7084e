package http

import (
	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/auth"
	"github.com/okarpenko/podhaven/internal/database"
)

// RouterConfig carries every dependency the router needs, so wiring stays
// in one place and tests can swap pieces.
type RouterConfig struct {
	Database       *database.Database
	AuthService    AuthService
	AuthMiddleware *auth.Middleware
	LibraryService LibraryService
	PodcastStore   PodcastStore
	UserStore      UserStore
	PasswordSvc    PasswordChanger
	Creators       CreatorResolver
	Catalog        CatalogGateway
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	libraryController := NewLibraryController(cfg.LibraryService)
	podcastsController := NewPodcastsController(cfg.PodcastStore, cfg.Creators)
	profileController := NewProfileController(cfg.UserStore, cfg.PasswordSvc)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints (public)
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)

	// Podcast records: listing is public, authoring requires auth
	router.GET("/api/podcasts", podcastsController.ListPodcasts)
	router.GET("/api/podcasts/:id", podcastsController.GetPodcast)

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.POST("/api/podcasts", podcastsController.CreatePodcast)
		protected.PUT("/api/podcasts/:id", podcastsController.UpdatePodcast)
		protected.DELETE("/api/podcasts/:id", podcastsController.DeletePodcast)

		// Liked library
		protected.PUT("/api/users/like/:podcastRef", libraryController.Like)
		protected.PUT("/api/users/unlike/:podcastRef", libraryController.Unlike)
		protected.GET("/api/users/library", libraryController.GetLibrary)

		// Profile
		protected.GET("/api/users/profile", profileController.GetProfile)
		protected.PUT("/api/users/profile", profileController.UpdateProfile)
		protected.PUT("/api/users/profile/password", profileController.ChangePassword)
	}

	// Catalog endpoints (public, like the rest of the discovery surface)
	if cfg.Catalog != nil {
		catalogController := NewCatalogController(cfg.Catalog)
		router.GET("/api/listennotes/search", catalogController.Search)
		router.GET("/api/listennotes/best", catalogController.BestPodcasts)
		router.GET("/api/listennotes/podcasts/:id", catalogController.GetPodcast)
	}

	return router
}
