package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ai-tutor-backend/internal/ai"
	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.StudyMaterial{},
		&model.MaterialChunk{},
		&model.Exam{},
		&model.Question{},
		&model.ExamAttempt{},
		&model.MinistryQuestion{},
		&model.MinistryExamAttempt{},
		&model.TutoringSession{},
		&model.SessionMessage{},
	))
	return db
}

// fakeLLM serves both /embeddings and /chat/completions. Embeddings are
// deterministic keyword vectors so similarity ranking is predictable.
type fakeLLM struct {
	chatContent string
	chatStatus  int
	chatCalls   int
}

func (f *fakeLLM) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/embeddings":
			var body struct {
				Input json.RawMessage `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)

			var texts []string
			if err := json.Unmarshal(body.Input, &texts); err != nil {
				var single string
				_ = json.Unmarshal(body.Input, &single)
				texts = []string{single}
			}

			data := make([]map[string]interface{}, len(texts))
			for i, text := range texts {
				data[i] = map[string]interface{}{"embedding": keywordEmbedding(text)}
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})

		case "/chat/completions":
			f.chatCalls++
			if f.chatStatus != 0 && f.chatStatus != http.StatusOK {
				http.Error(w, "upstream error", f.chatStatus)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": f.chatContent}},
				},
			})

		default:
			http.NotFound(w, r)
		}
	}
}

func keywordEmbedding(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "photosynthesis"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "algebra"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

type ragFixture struct {
	service      *RAGService
	llm          *fakeLLM
	materialRepo *repository.StudyMaterialRepository
	chunkRepo    *repository.MaterialChunkRepository
	questionRepo *repository.QuestionRepository
}

func setupRAG(t *testing.T, db *gorm.DB, llm *fakeLLM) *ragFixture {
	t.Helper()

	server := httptest.NewServer(llm.handler())
	t.Cleanup(server.Close)

	materialRepo := repository.NewStudyMaterialRepository(db)
	chunkRepo := repository.NewMaterialChunkRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	service := NewRAGService(
		materialRepo, chunkRepo, questionRepo,
		ai.NewClient(),
		ai.EmbeddingConfig{BaseURL: server.URL, Model: "embed-test"},
		ai.ChatConfig{BaseURL: server.URL, Model: "chat-test"},
		RAGOptions{TopK: 5, ChunkSize: 512, ChunkOverlap: 64},
		zap.NewNop().Sugar(),
	)
	return &ragFixture{
		service:      service,
		llm:          llm,
		materialRepo: materialRepo,
		chunkRepo:    chunkRepo,
		questionRepo: questionRepo,
	}
}
