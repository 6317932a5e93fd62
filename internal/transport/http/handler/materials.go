package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/pkg/markdown"
	"ai-tutor-backend/internal/pkg/pdfextract"
	"ai-tutor-backend/internal/transport/http/response"
)

const maxPDFUploadBytes = 10 << 20

type MaterialHandler struct {
	ragService *app.RAGService
}

func NewMaterialHandler(ragService *app.RAGService) *MaterialHandler {
	return &MaterialHandler{ragService: ragService}
}

type CreateMaterialRequest struct {
	Title           string `json:"title" binding:"required,max=256"`
	Content         string `json:"content" binding:"required"`
	Topic           string `json:"topic" binding:"required,max=128"`
	Subject         string `json:"subject" binding:"required,max=64"`
	Grade           string `json:"grade" binding:"max=32"`
	DifficultyLevel string `json:"difficulty_level" binding:"max=32"`
}

// Create ingests a markdown document. The markdown is flattened to plain
// text before chunking so formatting noise doesn't pollute the embeddings.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	material, err := h.ragService.IngestMaterial(c.Request.Context(), app.IngestInput{
		Title:           req.Title,
		Content:         markdown.ToText(req.Content),
		Topic:           req.Topic,
		Subject:         req.Subject,
		Grade:           req.Grade,
		DifficultyLevel: req.DifficultyLevel,
	})
	if err != nil {
		writeServiceError(c, err, "ingest material failed")
		return
	}

	response.Created(c, material)
}

// UploadPDF ingests a PDF study material sent as multipart form data.
func (h *MaterialHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if fileHeader.Size > maxPDFUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file exceeds 10MB limit")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}
	topic := c.PostForm("topic")
	subject := c.PostForm("subject")
	if topic == "" || subject == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "topic and subject are required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	content, err := pdfextract.ExtractText(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "could not extract text from PDF")
		return
	}

	material, err := h.ragService.IngestMaterial(c.Request.Context(), app.IngestInput{
		Title:           title,
		Content:         content,
		Topic:           topic,
		Subject:         subject,
		Grade:           c.PostForm("grade"),
		DifficultyLevel: c.PostForm("difficulty_level"),
	})
	if err != nil {
		writeServiceError(c, err, "ingest material failed")
		return
	}

	response.Created(c, material)
}

func (h *MaterialHandler) List(c *gin.Context) {
	offset, limit := paginationParams(c)
	materials, err := h.ragService.ListMaterials(c.Query("subject"), c.Query("topic"), offset, limit)
	if err != nil {
		writeServiceError(c, err, "list materials failed")
		return
	}
	response.OK(c, gin.H{"materials": materials, "count": len(materials)})
}

func (h *MaterialHandler) Get(c *gin.Context) {
	material, err := h.ragService.GetMaterial(c.Param("material_id"))
	if err != nil {
		writeServiceError(c, err, "fetch material failed")
		return
	}
	response.OK(c, material)
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.ragService.DeleteMaterial(c.Param("material_id")); err != nil {
		writeServiceError(c, err, "delete material failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

type AskRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
	Subject  string `json:"subject" binding:"max=64"`
	TopK     int    `json:"top_k" binding:"omitempty,min=1,max=20"`
}

// Ask answers a standalone question against the material index, outside
// any tutoring session.
func (h *MaterialHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.ragService.Answer(c.Request.Context(), app.AnswerInput{
		Query:   req.Question,
		Subject: req.Subject,
		TopK:    req.TopK,
	})
	if err != nil {
		writeServiceError(c, err, "answer question failed")
		return
	}
	response.OK(c, answer)
}
