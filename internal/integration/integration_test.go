package integration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
	pgstore "quiz-session-service/internal/infra/postgres"
	pgmigrations "quiz-session-service/internal/infra/postgres/migrations"
	infraredis "quiz-session-service/internal/infra/redis"
)

func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgAddr := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	pgURL := fmt.Sprintf("postgres://quiz:quizpass@%s/quizdb?sslmode=disable", pgAddr)
	redisAddr := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := pgstore.NewQuizStore(pool)

	quiz, err := store.CreateQuiz(ctx, sampleQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: redisAddr})
	defer redisClient.Close()

	quizCache := infraredis.NewQuizCache(redisClient, store, 5*time.Minute)
	snapshots := infraredis.NewSnapshotStore(redisClient, time.Hour)
	newService := func() *app.QuizService {
		return app.NewQuizService(infraredis.NewSessionStore(redisClient, 5*time.Minute), snapshots, quizCache, app.Options{
			NavigationGuard: -1,
			NewRand:         func() *rand.Rand { return rand.New(rand.NewSource(1)) },
		})
	}

	first := newService()
	defer first.Close()
	view, err := first.StartSession(ctx, quiz.ID, domain.QuizSettings{Mode: domain.ModeStandard})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := first.SubmitAnswer(ctx, view.SessionID, 1, "b"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := first.RequestAdvance(ctx, view.SessionID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// A second instance resumes from the snapshot written to redis.
	second := app.NewQuizService(memory.NewSessionStore(), snapshots, quizCache, app.Options{NavigationGuard: -1})
	defer second.Close()
	resumed, err := second.View(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Question == nil || resumed.Question.ID != 2 {
		t.Fatalf("expected resumed session on question 2, got %+v", resumed.Question)
	}
	if _, _, err := second.SubmitAnswer(ctx, view.SessionID, 2, domain.AnswerFalse); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := second.RequestAdvance(ctx, view.SessionID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	result, err := second.Result(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.CorrectCount != 1 || result.TotalQuestions != 2 || result.QuizID != quiz.ID {
		t.Fatalf("unexpected result: %+v", result)
	}
}

// startContainer runs req until the test ends and returns host:port for exposed.
func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, exposed nat.Port) string {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.PortEndpoint(ctx, exposed, "")
	if err != nil {
		t.Fatalf("%s endpoint: %v", req.Image, err)
	}
	return endpoint
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.NewQuiz {
	return domain.NewQuiz{
		Title: "Arithmetic",
		Topic: "Math",
		Content: domain.QuizContent{
			Topic: "Math",
			Questions: []domain.Question{
				{
					ID:            1,
					Kind:          domain.KindMultipleChoice,
					Prompt:        "What is 2 + 2?",
					Options:       map[string]string{"a": "3", "b": "4", "c": "5"},
					CorrectAnswer: "b",
				},
				{ID: 2, Kind: domain.KindTrueFalse, Prompt: "2 is even", CorrectAnswer: domain.AnswerTrue},
			},
		},
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
