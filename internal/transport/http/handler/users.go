package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/transport/http/middleware"
	"ai-tutor-backend/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
}

func NewUserHandler(userService *app.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// requireSelf rejects requests where the path user doesn't match the token
// subject. Users can only touch their own records.
func requireSelf(c *gin.Context) (string, bool) {
	tokenUserID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return "", false
	}
	pathUserID := c.Param("user_id")
	if pathUserID != tokenUserID {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "cannot access another user's records")
		return "", false
	}
	return pathUserID, true
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		writeServiceError(c, err, "fetch user failed")
		return
	}
	response.OK(c, userPayload(user))
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=128"`
	Email    *string `json:"email" binding:"omitempty,email,max=128"`
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.userService.UpdateUser(userID, app.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(c, err, "update user failed")
		return
	}
	response.OK(c, userPayload(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		writeServiceError(c, err, "delete user failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *UserHandler) LearningProgress(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	progress, err := h.userService.GetLearningProgress(userID)
	if err != nil {
		writeServiceError(c, err, "fetch learning progress failed")
		return
	}
	response.OK(c, progress)
}

func (h *UserHandler) ExamHistory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	offset, limit := paginationParams(c)
	attempts, err := h.userService.GetExamHistory(userID, c.Query("subject"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "fetch exam history failed")
		return
	}
	response.OK(c, gin.H{"attempts": attempts, "count": len(attempts)})
}

func (h *UserHandler) TutoringHistory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	offset, limit := paginationParams(c)
	sessions, err := h.userService.GetTutoringHistory(userID, c.Query("subject"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "fetch tutoring history failed")
		return
	}
	response.OK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}
