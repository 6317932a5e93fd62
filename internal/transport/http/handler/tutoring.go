package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/transport/http/middleware"
	"ai-tutor-backend/internal/transport/http/response"
)

type TutoringHandler struct {
	tutoringService *app.TutoringService
}

func NewTutoringHandler(tutoringService *app.TutoringService) *TutoringHandler {
	return &TutoringHandler{tutoringService: tutoringService}
}

type StartSessionRequest struct {
	Topic   string `json:"topic" binding:"required,max=128"`
	Subject string `json:"subject" binding:"required,max=64"`
	Grade   string `json:"grade" binding:"max=32"`
	Title   string `json:"title" binding:"max=256"`
}

func (h *TutoringHandler) Start(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.tutoringService.StartSession(userID, app.StartSessionInput{
		Topic:   req.Topic,
		Subject: req.Subject,
		Grade:   req.Grade,
		Title:   req.Title,
	})
	if err != nil {
		writeServiceError(c, err, "start session failed")
		return
	}
	response.Created(c, session)
}

type SessionAskRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

func (h *TutoringHandler) Ask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req SessionAskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.tutoringService.Ask(c.Request.Context(), c.Param("session_id"), userID, req.Question)
	if err != nil {
		writeServiceError(c, err, "answer question failed")
		return
	}
	response.OK(c, answer)
}

func (h *TutoringHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	session, err := h.tutoringService.GetSession(c.Param("session_id"), userID)
	if err != nil {
		writeServiceError(c, err, "fetch session failed")
		return
	}
	response.OK(c, session)
}

func (h *TutoringHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	offset, limit := paginationParams(c)
	sessions, err := h.tutoringService.ListSessions(userID, c.Query("subject"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "list sessions failed")
		return
	}
	response.OK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}

type RateSessionRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

func (h *TutoringHandler) Rate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req RateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "rating must be between 1 and 5")
		return
	}

	session, err := h.tutoringService.RateSession(c.Param("session_id"), userID, req.Rating)
	if err != nil {
		writeServiceError(c, err, "rate session failed")
		return
	}
	response.OK(c, session)
}

func (h *TutoringHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	if err := h.tutoringService.DeleteSession(c.Request.Context(), c.Param("session_id"), userID); err != nil {
		writeServiceError(c, err, "delete session failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *TutoringHandler) Messages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	limit := intQuery(c, "limit", 100)
	messages, err := h.tutoringService.GetMessages(c.Request.Context(), c.Param("session_id"), userID, limit)
	if err != nil {
		writeServiceError(c, err, "fetch messages failed")
		return
	}
	response.OK(c, gin.H{"messages": messages, "count": len(messages)})
}
