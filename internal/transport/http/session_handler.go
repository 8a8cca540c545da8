package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

type SessionHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

func NewSessionHandler(service *app.QuizService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, log: log}
}

type StartSessionRequest struct {
	QuizID   int64               `json:"quizId" binding:"required,min=1"`
	Settings domain.QuizSettings `json:"settings"`
}

type AnswerRequest struct {
	QuestionID int64  `json:"questionId"`
	Answer     string `json:"answer" binding:"required"`
}

type AnswerResponse struct {
	Answer domain.Answer `json:"answer"`
	View   app.View      `json:"view"`
}

type JumpRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	view, err := h.service.StartSession(c.Request.Context(), req.QuizID, req.Settings)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) View(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

func (h *SessionHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	answer, view, err := h.service.SubmitAnswer(c.Request.Context(), c.Param("id"), req.QuestionID, req.Answer)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, AnswerResponse{Answer: answer, View: view})
}

func (h *SessionHandler) Advance(c *gin.Context) {
	view, err := h.service.RequestAdvance(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

func (h *SessionHandler) Back(c *gin.Context) {
	view, err := h.service.RequestBack(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

func (h *SessionHandler) Jump(c *gin.Context) {
	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	view, err := h.service.JumpTo(c.Request.Context(), c.Param("id"), *req.Index)
	h.respond(c, view, err)
}

func (h *SessionHandler) End(c *gin.Context) {
	view, err := h.service.EndPractice(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

func (h *SessionHandler) Result(c *gin.Context) {
	result, err := h.service.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) respond(c *gin.Context, view app.View, err error) {
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
