package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/auth"
	"github.com/okarpenko/podhaven/internal/catalog"
	"github.com/okarpenko/podhaven/internal/config"
	"github.com/okarpenko/podhaven/internal/database"
	"github.com/okarpenko/podhaven/internal/database/podcasts"
	"github.com/okarpenko/podhaven/internal/database/users"
	http_controllers "github.com/okarpenko/podhaven/internal/http"
	"github.com/okarpenko/podhaven/internal/library"
	"github.com/okarpenko/podhaven/internal/scheduler"
	"github.com/okarpenko/podhaven/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout, calling onShutdown first.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before closing the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component together and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Podhaven v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set; refusing to issue unsigned tokens")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	podcastRepo := podcasts.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)

	authService := auth.NewService(userRepo, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService)

	libraryService := library.NewService(podcastRepo, userRepo, userRepo)

	var catalogClient *catalog.Client
	if cfg.ListenNotes.APIKey != "" {
		catalogClient = catalog.NewClient(cfg.ListenNotes.APIKey, cfg.ListenNotes.BaseURL)
	} else {
		log.Printf("WARNING: LISTEN_NOTES_API_KEY is not set. Catalog endpoints will be disabled.")
	}

	// Task queue for background catalog refresh
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && catalogClient != nil {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshPodcastQueue(podcastRepo, catalogClient),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	refreshScheduler := scheduler.NewCatalogRefreshScheduler(podcastRepo, taskClient, cfg.CatalogRefresh)
	if err := refreshScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start catalog refresh scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		LibraryService: libraryService,
		PodcastStore:   podcastRepo,
		UserStore:      userRepo,
		PasswordSvc:    authService,
		Creators:       userRepo,
		Version:        version,
	}
	if catalogClient != nil {
		routerCfg.Catalog = catalogClient
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		refreshScheduler.Stop()
		if taskClient != nil {
			if taskCtxCancel != nil {
				taskCtxCancel()
			}
			taskClient.Stop(ctx)
		}
	})
}
