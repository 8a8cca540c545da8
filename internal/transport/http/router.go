package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/metrics"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Catalog  *app.Catalog
	Sessions *app.QuizService
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewRouter wires the REST API, the websocket endpoint, health and metrics.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), metrics.GinMiddleware(deps.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	quizzes := NewQuizHandler(deps.Catalog, log)
	sessions := NewSessionHandler(deps.Sessions, log)
	ws := NewWSHandler(deps.Sessions, log)

	api := r.Group("/api")
	{
		api.GET("/quizzes", quizzes.ListQuizzes)
		api.POST("/quizzes", quizzes.CreateQuiz)
		api.GET("/quizzes/:id", quizzes.GetQuiz)
		api.PUT("/quizzes/:id", quizzes.UpdateQuiz)
		api.DELETE("/quizzes/:id", quizzes.DeleteQuiz)
		api.POST("/parse-quiz", quizzes.ParseText)
		api.POST("/parse-quiz/json", quizzes.ParseJSON)

		api.POST("/sessions", sessions.Start)
		api.GET("/sessions/:id", sessions.View)
		api.DELETE("/sessions/:id", sessions.Abandon)
		api.POST("/sessions/:id/answer", sessions.Answer)
		api.POST("/sessions/:id/advance", sessions.Advance)
		api.POST("/sessions/:id/back", sessions.Back)
		api.POST("/sessions/:id/jump", sessions.Jump)
		api.POST("/sessions/:id/end", sessions.End)
		api.GET("/sessions/:id/result", sessions.Result)
	}
	r.GET("/ws", gin.WrapF(ws.ServeWS))
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
