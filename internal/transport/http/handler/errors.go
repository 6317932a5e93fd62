package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/transport/http/response"
)

// writeServiceError maps service-layer sentinels onto the response
// envelope. Anything unmapped is a 500 with the caller's fallback message.
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidRating):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRating, err.Error())
	case errors.Is(err, app.ErrAnswerNotInExam):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrInvalidGoogleToken):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidGoogleToken, err.Error())
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
	case errors.Is(err, app.ErrExamNotFound):
		response.Error(c, http.StatusNotFound, response.CodeExamNotFound, err.Error())
	case errors.Is(err, app.ErrQuestionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeQuestionNotFound, err.Error())
	case errors.Is(err, app.ErrAttemptNotFound), errors.Is(err, app.ErrNoActiveAttempt):
		response.Error(c, http.StatusNotFound, response.CodeAttemptNotFound, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrMaterialNotFound):
		response.Error(c, http.StatusNotFound, response.CodeMaterialNotFound, err.Error())
	case errors.Is(err, app.ErrAttemptCompleted):
		response.Error(c, http.StatusConflict, response.CodeAttemptCompleted, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func paginationParams(c *gin.Context) (offset, limit int) {
	offset = intQuery(c, "skip", 0)
	limit = intQuery(c, "limit", 20)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
