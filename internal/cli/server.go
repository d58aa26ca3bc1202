package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/catalog"
	"live-quiz-service/internal/infra/memory"
	pgcatalog "live-quiz-service/internal/infra/postgres"
	redisinfra "live-quiz-service/internal/infra/redis"
	api "live-quiz-service/internal/transport/http"
	"live-quiz-service/internal/transport/ws"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	storePath := cfg.Quiz.StorePath
	if storePath == "" {
		storePath = "data/quiz-store.json"
	}

	// Quiz catalog: Postgres when configured, the flat JSON store otherwise.
	var store api.CatalogStore
	var loader memory.QuizLoader
	if pool != nil {
		pg := pgcatalog.NewCatalog(pool)
		store, loader = pg, pg
	} else {
		fileStore, err := catalog.NewFileStore(storePath)
		if err != nil {
			return err
		}
		store, loader = fileStore, fileStore
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizRepository
	if redisClient != nil {
		quizzes = redisinfra.NewQuizCache(redisClient, loader, quizTTL)
	} else {
		quizzes = memory.NewQuizCache(loader, quizTTL)
	}

	var registry app.SessionRegistry
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, config.Duration(cfg.Redis.TTL, time.Hour))
	} else {
		registry = memory.NewSessionRegistry()
	}

	gameCfg := app.Config{
		StartDelay:  config.Duration(cfg.Game.StartDelay, 2*time.Second),
		FinishGrace: config.Duration(cfg.Game.FinishGrace, 5*time.Minute),
		IdleTimeout: config.Duration(cfg.Game.IdleTimeout, time.Hour),
	}

	hub := ws.NewHub()
	service := app.NewGameService(registry, memory.NewParticipantIndex(), quizzes, hub, app.TimerScheduler{}, gameCfg)
	wsHandler := ws.NewHandler(hub, service)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go service.RunSweeper(sweepCtx, config.Duration(cfg.Game.SweepInterval, 10*time.Minute))

	router := httprouter.New()
	api.NewAPI(store, service, baseURL).Register(router, wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket connections.
	}

	go func() {
		log.Printf("starting live quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
