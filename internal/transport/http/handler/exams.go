package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/repository"
	"ai-tutor-backend/internal/transport/http/middleware"
	"ai-tutor-backend/internal/transport/http/response"
)

type ExamHandler struct {
	examService *app.ExamService
}

func NewExamHandler(examService *app.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

type CreateExamRequest struct {
	Title               string   `json:"title" binding:"required,max=256"`
	Subject             string   `json:"subject" binding:"required,max=64"`
	GradeLevel          string   `json:"grade_level" binding:"max=32"`
	Description         string   `json:"description"`
	TotalTimeMinutes    int      `json:"total_time_minutes" binding:"omitempty,min=1,max=600"`
	PassingScore        float64  `json:"passing_score" binding:"omitempty,min=1,max=100"`
	Instructions        string   `json:"instructions"`
	MinistryQuestionIDs []string `json:"ministry_question_ids"`
}

func (h *ExamHandler) Create(c *gin.Context) {
	var req CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	exam, err := h.examService.CreateExam(app.CreateExamInput{
		Title:               req.Title,
		Subject:             req.Subject,
		GradeLevel:          req.GradeLevel,
		Description:         req.Description,
		TotalTimeMinutes:    req.TotalTimeMinutes,
		PassingScore:        req.PassingScore,
		Instructions:        req.Instructions,
		MinistryQuestionIDs: req.MinistryQuestionIDs,
	})
	if err != nil {
		writeServiceError(c, err, "create exam failed")
		return
	}
	response.Created(c, exam)
}

func (h *ExamHandler) List(c *gin.Context) {
	offset, limit := paginationParams(c)
	exams, err := h.examService.ListExams(c.Query("subject"), c.Query("grade_level"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "list exams failed")
		return
	}
	response.OK(c, gin.H{"exams": exams, "count": len(exams)})
}

func (h *ExamHandler) Get(c *gin.Context) {
	exam, questions, err := h.examService.GetExam(c.Param("exam_id"))
	if err != nil {
		writeServiceError(c, err, "fetch exam failed")
		return
	}
	response.OK(c, gin.H{"exam": exam, "questions": questions})
}

type AddQuestionRequest struct {
	QuestionText    string            `json:"question_text" binding:"required"`
	AnswerText      string            `json:"answer_text" binding:"required"`
	Topic           string            `json:"topic" binding:"max=128"`
	QuestionType    string            `json:"question_type" binding:"omitempty,oneof=multiple_choice short_answer essay"`
	DifficultyLevel string            `json:"difficulty_level" binding:"max=32"`
	Options         map[string]string `json:"options"`
	CorrectOption   string            `json:"correct_option" binding:"max=8"`
}

func (h *ExamHandler) AddQuestion(c *gin.Context) {
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	question, err := h.examService.AddQuestion(c.Request.Context(), c.Param("exam_id"), app.AddQuestionInput{
		QuestionText:    req.QuestionText,
		AnswerText:      req.AnswerText,
		Topic:           req.Topic,
		QuestionType:    req.QuestionType,
		DifficultyLevel: req.DifficultyLevel,
		Options:         req.Options,
		CorrectOption:   req.CorrectOption,
	})
	if err != nil {
		writeServiceError(c, err, "add question failed")
		return
	}
	response.Created(c, question)
}

func (h *ExamHandler) ListQuestions(c *gin.Context) {
	questions, err := h.examService.ListQuestions(c.Param("exam_id"))
	if err != nil {
		writeServiceError(c, err, "list questions failed")
		return
	}
	response.OK(c, gin.H{"questions": questions, "count": len(questions)})
}

func (h *ExamHandler) StartAttempt(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	attempt, err := h.examService.StartAttempt(c.Param("exam_id"), userID)
	if err != nil {
		writeServiceError(c, err, "start attempt failed")
		return
	}
	response.Created(c, attempt)
}

type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	attempt, err := h.examService.SubmitAttempt(c.Param("exam_id"), c.Param("attempt_id"), userID, req.Answers)
	if err != nil {
		writeServiceError(c, err, "submit attempt failed")
		return
	}
	response.OK(c, attempt)
}

func (h *ExamHandler) GetAttempt(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	attempt, err := h.examService.GetAttempt(c.Param("exam_id"), c.Param("attempt_id"), userID)
	if err != nil {
		writeServiceError(c, err, "fetch attempt failed")
		return
	}
	response.OK(c, attempt)
}

func (h *ExamHandler) Retake(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	attempt, err := h.examService.Retake(c.Param("exam_id"), userID)
	if err != nil {
		writeServiceError(c, err, "retake exam failed")
		return
	}
	response.Created(c, attempt)
}

func (h *ExamHandler) ListUserAttempts(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	offset, limit := paginationParams(c)
	attempts, err := h.examService.ListUserAttempts(userID, c.Query("subject"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "list attempts failed")
		return
	}
	response.OK(c, gin.H{"attempts": attempts, "count": len(attempts)})
}

type MinistryQuestionRequest struct {
	Subject         string            `json:"subject" binding:"required,max=64"`
	Grade           string            `json:"grade" binding:"max=32"`
	Year            int               `json:"year" binding:"omitempty,min=1990,max=2100"`
	Session         string            `json:"session" binding:"max=32"`
	QuestionText    string            `json:"question_text" binding:"required"`
	AnswerKey       string            `json:"answer_key"`
	QuestionType    string            `json:"question_type" binding:"omitempty,oneof=multiple_choice short_answer essay"`
	Options         map[string]string `json:"options"`
	CorrectOption   string            `json:"correct_option" binding:"max=8"`
	DifficultyLevel string            `json:"difficulty_level" binding:"max=32"`
}

func (h *ExamHandler) AddMinistryQuestion(c *gin.Context) {
	var req MinistryQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	question, err := h.examService.AddMinistryQuestion(app.MinistryQuestionInput{
		Subject:         req.Subject,
		Grade:           req.Grade,
		Year:            req.Year,
		Session:         req.Session,
		QuestionText:    req.QuestionText,
		AnswerKey:       req.AnswerKey,
		QuestionType:    req.QuestionType,
		Options:         req.Options,
		CorrectOption:   req.CorrectOption,
		DifficultyLevel: req.DifficultyLevel,
	})
	if err != nil {
		writeServiceError(c, err, "add ministry question failed")
		return
	}
	response.Created(c, question)
}

func (h *ExamHandler) ListMinistryQuestions(c *gin.Context) {
	offset, limit := paginationParams(c)
	questions, err := h.examService.ListMinistryQuestions(repository.MinistryQuestionFilter{
		Subject:         c.Query("subject"),
		Grade:           c.Query("grade"),
		Year:            intQuery(c, "year", 0),
		Session:         c.Query("session"),
		DifficultyLevel: c.Query("difficulty_level"),
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		writeServiceError(c, err, "list ministry questions failed")
		return
	}
	response.OK(c, gin.H{"questions": questions, "count": len(questions)})
}

func (h *ExamHandler) GetMinistryQuestion(c *gin.Context) {
	question, err := h.examService.GetMinistryQuestion(c.Param("question_id"))
	if err != nil {
		writeServiceError(c, err, "fetch ministry question failed")
		return
	}
	response.OK(c, question)
}

func (h *ExamHandler) DeleteMinistryQuestion(c *gin.Context) {
	if err := h.examService.DeleteMinistryQuestion(c.Param("question_id")); err != nil {
		writeServiceError(c, err, "delete ministry question failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

type CreateMinistryExamRequest struct {
	Title            string   `json:"title" binding:"max=256"`
	QuestionIDs      []string `json:"question_ids" binding:"required,min=1"`
	TotalTimeMinutes int      `json:"total_time_minutes" binding:"omitempty,min=1,max=600"`
	Instructions     string   `json:"instructions"`
}

func (h *ExamHandler) CreateFromMinistry(c *gin.Context) {
	var req CreateMinistryExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	exam, err := h.examService.CreateExamFromMinistry(app.CreateMinistryExamInput{
		Title:            req.Title,
		QuestionIDs:      req.QuestionIDs,
		TotalTimeMinutes: req.TotalTimeMinutes,
		Instructions:     req.Instructions,
	})
	if err != nil {
		writeServiceError(c, err, "create ministry exam failed")
		return
	}
	response.Created(c, exam)
}

func (h *ExamHandler) ExamMinistryQuestions(c *gin.Context) {
	questions, err := h.examService.GetExamMinistryQuestions(c.Param("exam_id"))
	if err != nil {
		writeServiceError(c, err, "fetch exam ministry questions failed")
		return
	}
	response.OK(c, gin.H{"questions": questions, "count": len(questions)})
}

func (h *ExamHandler) StartMinistryAttempt(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	attempt, err := h.examService.StartMinistryAttempt(c.Param("exam_id"), userID)
	if err != nil {
		writeServiceError(c, err, "start ministry attempt failed")
		return
	}
	response.Created(c, attempt)
}

func (h *ExamHandler) SubmitMinistryAttempt(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	attempt, err := h.examService.SubmitMinistryAttempt(c.Request.Context(), c.Param("exam_id"), userID, req.Answers)
	if err != nil {
		writeServiceError(c, err, "submit ministry attempt failed")
		return
	}
	response.OK(c, attempt)
}

func (h *ExamHandler) ListMinistryAttempts(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	attempts, err := h.examService.ListMinistryAttempts(c.Param("exam_id"), userID)
	if err != nil {
		writeServiceError(c, err, "list ministry attempts failed")
		return
	}
	response.OK(c, gin.H{"attempts": attempts, "count": len(attempts)})
}

func (h *ExamHandler) GetMinistryAttempt(c *gin.Context) {
	attempt, err := h.examService.GetMinistryAttempt(c.Param("exam_id"), c.Param("attempt_id"))
	if err != nil {
		writeServiceError(c, err, "fetch ministry attempt failed")
		return
	}
	response.OK(c, attempt)
}
