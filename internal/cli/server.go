package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/config"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
	pgstore "quiz-session-service/internal/infra/postgres"
	rediscache "quiz-session-service/internal/infra/redis"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/metrics"
	"quiz-session-service/internal/session"
	transport "quiz-session-service/internal/transport/http"
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
	log := logger.New(cfg.Logger)
	defer func() { _ = log.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	snapshotTTL := config.TTLDuration(cfg.Session.SnapshotTTL, 24*time.Hour)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var quizStore app.QuizStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		quizStore = pgstore.NewQuizStore(pool)
	} else {
		log.Warn("postgres not configured, serving the built-in sample quiz from memory")
		quizStore = memory.NewQuizStore(sampleQuiz())
	}

	var (
		quizCache app.QuizCache
		sessions  app.SessionRepository
		snapshots app.SnapshotStore
	)
	if redisClient != nil {
		quizCache = rediscache.NewQuizCache(redisClient, quizStore, quizTTL)
		sessions = rediscache.NewSessionStore(redisClient, redisTTL)
		snapshots = rediscache.NewSnapshotStore(redisClient, snapshotTTL)
	} else {
		quizCache = memory.NewQuizCache(quizStore, quizTTL)
		sessions = memory.NewSessionStore()
		snapshots = memory.NewSnapshotStore()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	service := app.NewQuizService(sessions, snapshots, quizCache, app.Options{
		NavigationGuard: navigationGuard(cfg.Session.NavigationGuard),
		TickInterval:    config.TTLDuration(cfg.Session.Tick, time.Second),
		Logger:          log,
		Metrics:         m,
	})
	defer service.Close()

	if cfg.Logger.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(transport.RouterDeps{
		Catalog:  app.NewCatalog(quizStore, quizCache, log),
		Sessions: service,
		Metrics:  m,
		Logger:   log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// navigationGuard reads session.navigation_guard. Unset keeps the default; an explicit zero
// turns the guard off.
func navigationGuard(raw string) time.Duration {
	guard := config.TTLDuration(raw, session.DefaultNavigationGuard)
	if guard <= 0 {
		return -1
	}
	return guard
}

// sampleQuiz seeds the in-memory store so the service is usable without a database.
func sampleQuiz() domain.NewQuiz {
	return domain.NewQuiz{
		Title: "Getting started",
		Topic: "General knowledge",
		Content: domain.QuizContent{
			Topic: "General knowledge",
			Questions: []domain.Question{
				{ID: 1, Kind: domain.KindTrueFalse, Prompt: "Water boils at 100 degrees Celsius at sea level.", CorrectAnswer: domain.AnswerTrue},
				{ID: 2, Kind: domain.KindTrueFalse, Prompt: "The Moon is larger than the Earth.", CorrectAnswer: domain.AnswerFalse},
				{
					ID:            3,
					Kind:          domain.KindMultipleChoice,
					Prompt:        "What is 2 + 2?",
					Options:       map[string]string{"a": "3", "b": "4", "c": "5"},
					CorrectAnswer: "b",
				},
				{
					ID:            4,
					Kind:          domain.KindMultipleChoice,
					Prompt:        "Which planet is closest to the Sun?",
					Options:       map[string]string{"a": "Venus", "b": "Earth", "c": "Mercury", "d": "Mars"},
					CorrectAnswer: "c",
				},
			},
		},
	}
}
