package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

type QuizHandler struct {
	catalog *app.Catalog
	log     *zap.Logger
}

func NewQuizHandler(catalog *app.Catalog, log *zap.Logger) *QuizHandler {
	return &QuizHandler{catalog: catalog, log: log}
}

type ParseTextRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req domain.NewQuiz
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	quiz, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	quiz, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	var patch domain.QuizPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	quiz, err := h.catalog.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ParseText converts plain quiz text into structured content without storing it.
func (h *QuizHandler) ParseText(c *gin.Context) {
	var req ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quiz text is required"})
		return
	}
	content, err := h.catalog.ParseText(req.Text, req.Title)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// ParseJSON validates exported quiz content sent as the raw body.
func (h *QuizHandler) ParseJSON(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable body"})
		return
	}
	content, err := h.catalog.ParseJSON(raw)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func quizID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quiz id"})
		return 0, false
	}
	return id, true
}
