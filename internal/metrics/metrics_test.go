package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSessionCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionStarted("practice")
	m.SessionStarted("practice")
	m.SessionCompleted("practice")
	m.SessionReleased()
	m.AnswerSubmitted("practice", false)
	m.QuestionTimedOut()

	if got := testutil.ToFloat64(m.SessionsStarted.WithLabelValues("practice")); got != 2 {
		t.Fatalf("expected 2 started, got %v", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 1 {
		t.Fatalf("expected 1 active, got %v", got)
	}
	if got := testutil.ToFloat64(m.Answers.WithLabelValues("practice", "false")); got != 1 {
		t.Fatalf("expected 1 incorrect answer, got %v", got)
	}
	if got := testutil.ToFloat64(m.Timeouts); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted("standard")
	m.AnswerSubmitted("standard", true)
	m.SessionReleased()
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	if got := testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/ping/:id", "204")); got != 1 {
		t.Fatalf("expected 1 request recorded, got %v", got)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "quiz_http_requests_total") {
		t.Fatalf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}
