package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ai-tutor-backend/internal/ai"
	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/repository"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	defaultTopK         = 5
	embeddingBatchSize  = 10 // most providers cap batch input size

	tutorSystemPrompt = "You are an expert educational tutor. Provide clear, helpful and " +
		"encouraging explanations in both Arabic and English as appropriate. Use the provided " +
		"study materials and reference questions to inform your response, and focus on building " +
		"understanding rather than just giving the answer."
)

// RAGService runs the retrieval-augmented pipeline: ingest study materials
// into the chunk index, retrieve by cosine similarity, assemble a prompt
// and generate an answer, degrading to the retrieved text when the LLM is
// unreachable.
type RAGService struct {
	materialRepo *repository.StudyMaterialRepository
	chunkRepo    *repository.MaterialChunkRepository
	questionRepo *repository.QuestionRepository
	llmClient    *ai.Client
	embConfig    ai.EmbeddingConfig
	chatConfig   ai.ChatConfig
	topK         int
	chunkSize    int
	chunkOverlap int
	log          *zap.SugaredLogger
}

type RAGOptions struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

func NewRAGService(
	materialRepo *repository.StudyMaterialRepository,
	chunkRepo *repository.MaterialChunkRepository,
	questionRepo *repository.QuestionRepository,
	llmClient *ai.Client,
	embConfig ai.EmbeddingConfig,
	chatConfig ai.ChatConfig,
	opts RAGOptions,
	log *zap.SugaredLogger,
) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = defaultChunkOverlap
	}
	return &RAGService{
		materialRepo: materialRepo,
		chunkRepo:    chunkRepo,
		questionRepo: questionRepo,
		llmClient:    llmClient,
		embConfig:    embConfig,
		chatConfig:   chatConfig,
		topK:         opts.TopK,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		log:          log,
	}
}

// IngestInput is a study material ready for indexing; Content is plain text
// (markdown and PDF conversion happen at the transport layer).
type IngestInput struct {
	Title           string
	Content         string
	Topic           string
	Subject         string
	Grade           string
	DifficultyLevel string
}

// IngestMaterial chunks the content, embeds every chunk and persists the
// material with its index entries.
func (s *RAGService) IngestMaterial(ctx context.Context, input IngestInput) (*model.StudyMaterial, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" || strings.TrimSpace(input.Topic) == "" || strings.TrimSpace(input.Subject) == "" {
		return nil, ErrInvalidInput
	}
	difficulty := strings.TrimSpace(input.DifficultyLevel)
	if difficulty == "" {
		difficulty = "intermediate"
	}

	parts := chunkText(content, s.chunkSize, s.chunkOverlap)
	if len(parts) == 0 {
		return nil, ErrInvalidInput
	}

	embeddings, err := s.embedBatched(ctx, parts)
	if err != nil {
		return nil, err
	}

	material := &model.StudyMaterial{
		ID:              model.NewID("mat"),
		Title:           title,
		Content:         content,
		Topic:           strings.TrimSpace(input.Topic),
		Subject:         strings.TrimSpace(input.Subject),
		Grade:           strings.TrimSpace(input.Grade),
		DifficultyLevel: difficulty,
		ChunkCount:      len(parts),
	}
	if err := s.materialRepo.Create(material); err != nil {
		return nil, err
	}

	chunks := make([]model.MaterialChunk, len(parts))
	for i := range parts {
		chunks[i] = model.MaterialChunk{
			MaterialID: material.ID,
			Seq:        i,
			Content:    parts[i],
			Subject:    material.Subject,
		}
		chunks[i].SetEmbedding(embeddings[i])
	}
	if err := s.chunkRepo.CreateBatch(chunks); err != nil {
		return nil, err
	}

	return material, nil
}

func (s *RAGService) ListMaterials(subject, topic string, offset, limit int) ([]model.StudyMaterial, error) {
	return s.materialRepo.List(subject, topic, offset, limit)
}

func (s *RAGService) GetMaterial(id string) (*model.StudyMaterial, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	material, err := s.materialRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	return material, nil
}

// DeleteMaterial removes the material and its index entries.
func (s *RAGService) DeleteMaterial(id string) error {
	material, err := s.GetMaterial(id)
	if err != nil {
		return err
	}
	if err := s.chunkRepo.DeleteByMaterialID(material.ID); err != nil {
		return err
	}
	return s.materialRepo.Delete(material.ID)
}

// IndexQuestion embeds the question+answer pair so it can surface as a
// reference during retrieval.
func (s *RAGService) IndexQuestion(ctx context.Context, question *model.Question) error {
	combined := question.QuestionText + "\n\nAnswer: " + question.AnswerText
	vec, err := s.llmClient.Embed(ctx, s.embConfig, combined)
	if err != nil {
		return fmt.Errorf("embed question failed: %w", err)
	}
	question.SetEmbedding(vec)
	return s.questionRepo.Save(question)
}

// RAGSource identifies one retrieved document backing an answer.
type RAGSource struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// RAGAnswer is the generated (or degraded) answer with its provenance.
type RAGAnswer struct {
	Query      string      `json:"query"`
	Answer     string      `json:"answer"`
	Sources    []RAGSource `json:"sources"`
	Confidence float64     `json:"confidence"`
}

type AnswerInput struct {
	Query   string
	Subject string
	TopK    int
}

// Answer runs the full pipeline: embed the query, rank material chunks and
// reference questions by cosine similarity, assemble the prompt and call
// the LLM. When the LLM call fails the retrieved text is returned verbatim
// with confidence 0.
func (s *RAGService) Answer(ctx context.Context, input AnswerInput) (*RAGAnswer, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	chunks, questions, err := s.retrieve(ctx, query, input.Subject, topK)
	if err != nil {
		return nil, err
	}

	sources, err := s.sourcesFor(chunks)
	if err != nil {
		return nil, err
	}

	contextText := buildContextBlock(chunks, questions)
	messages := []ai.ChatMessage{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: "CONTEXT FROM STUDY MATERIALS:\n" + contextText +
			"\n\nSTUDENT QUESTION:\n" + query + "\n\nRESPONSE:"},
	}

	answer, err := s.llmClient.Complete(ctx, s.chatConfig, messages)
	if err != nil {
		s.log.Warnw("llm completion failed, returning retrieved text", "error", err)
		return &RAGAnswer{
			Query:      query,
			Answer:     fallbackAnswer(chunks),
			Sources:    sources,
			Confidence: 0,
		}, nil
	}

	return &RAGAnswer{
		Query:      query,
		Answer:     strings.TrimSpace(answer),
		Sources:    sources,
		Confidence: 1,
	}, nil
}

// GradeInput asks the LLM to score a free-form answer against the model
// answer.
type GradeInput struct {
	QuestionText  string
	ModelAnswer   string
	StudentAnswer string
	Subject       string
	MaxScore      float64
}

type GradeResult struct {
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	Confidence float64 `json:"confidence"`
	Raw        string  `json:"raw,omitempty"`
}

// GradeAnswer returns a score in [0, MaxScore] plus feedback. Callers treat
// any error as a zero score.
func (s *RAGService) GradeAnswer(ctx context.Context, input GradeInput) (*GradeResult, error) {
	if strings.TrimSpace(input.StudentAnswer) == "" {
		return &GradeResult{Score: 0, Feedback: "No answer was submitted.", Confidence: 1}, nil
	}
	maxScore := input.MaxScore
	if maxScore <= 0 {
		maxScore = 1
	}

	prompt := fmt.Sprintf(
		"Grade the student's answer against the model answer.\n\nSubject: %s\nQuestion: %s\nModel answer: %s\nStudent answer: %s\n\n"+
			"Reply with a single JSON object: {\"score\": <0..%.1f>, \"feedback\": \"<one or two sentences>\", \"confidence\": <0..1>}",
		input.Subject, input.QuestionText, input.ModelAnswer, input.StudentAnswer, maxScore,
	)
	messages := []ai.ChatMessage{
		{Role: "system", Content: "You are a strict but fair exam grader. Respond with JSON only."},
		{Role: "user", Content: prompt},
	}

	raw, err := s.llmClient.Complete(ctx, s.chatConfig, messages)
	if err != nil {
		return nil, err
	}

	result, err := parseGradeResult(raw)
	if err != nil {
		return nil, err
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > maxScore {
		result.Score = maxScore
	}
	result.Raw = raw
	return result, nil
}

func (s *RAGService) retrieve(ctx context.Context, query, subject string, topK int) ([]model.MaterialChunk, []model.Question, error) {
	allChunks, err := s.chunkRepo.ListBySubject(subject)
	if err != nil {
		return nil, nil, err
	}
	allQuestions, err := s.questionRepo.ListEmbedded(subject)
	if err != nil {
		return nil, nil, err
	}
	if len(allChunks) == 0 && len(allQuestions) == 0 {
		return nil, nil, nil
	}

	queryVec, err := s.llmClient.Embed(ctx, s.embConfig, query)
	if err != nil {
		return nil, nil, fmt.Errorf("embed query failed: %w", err)
	}

	scoredChunks := make([]scored[model.MaterialChunk], len(allChunks))
	for i := range allChunks {
		scoredChunks[i] = scored[model.MaterialChunk]{
			item:  allChunks[i],
			score: cosineSimilarity(queryVec, allChunks[i].EmbeddingVector()),
		}
	}
	scoredQuestions := make([]scored[model.Question], len(allQuestions))
	for i := range allQuestions {
		scoredQuestions[i] = scored[model.Question]{
			item:  allQuestions[i],
			score: cosineSimilarity(queryVec, allQuestions[i].EmbeddingVector()),
		}
	}

	questionK := topK
	if questionK > 3 {
		questionK = 3
	}
	return topItems(scoredChunks, topK), topItems(scoredQuestions, questionK), nil
}

// sourcesFor maps retrieved chunks back to their parent materials, deduped,
// in rank order.
func (s *RAGService) sourcesFor(chunks []model.MaterialChunk) ([]RAGSource, error) {
	if len(chunks) == 0 {
		return []RAGSource{}, nil
	}

	seen := make(map[string]bool, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if !seen[c.MaterialID] {
			seen[c.MaterialID] = true
			ids = append(ids, c.MaterialID)
		}
	}

	titles, err := s.materialRepo.TitlesByIDs(ids)
	if err != nil {
		return nil, err
	}

	sources := make([]RAGSource, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, RAGSource{
			Type:  "study_material",
			ID:    id,
			Title: titles[id],
		})
	}
	return sources, nil
}

func (s *RAGService) embedBatched(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.llmClient.EmbedBatch(ctx, s.embConfig, texts[i:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(texts))
	}
	return embeddings, nil
}

func buildContextBlock(chunks []model.MaterialChunk, questions []model.Question) string {
	var b strings.Builder

	if len(chunks) > 0 {
		b.WriteString("=== STUDY MATERIALS ===\n")
		for _, c := range chunks {
			b.WriteString("\n---\n")
			b.WriteString(c.Content)
		}
		b.WriteString("\n---\n")
	}

	if len(questions) > 0 {
		b.WriteString("\n=== REFERENCE QUESTIONS & ANSWERS ===\n")
		for _, q := range questions {
			b.WriteString("\nQ: " + q.QuestionText + "\nA: " + q.AnswerText + "\n")
		}
	}

	if b.Len() == 0 {
		return "(no study materials matched the question)"
	}
	return b.String()
}

// fallbackAnswer is the degraded response when the LLM is unreachable: the
// top retrieved material text, verbatim.
func fallbackAnswer(chunks []model.MaterialChunk) string {
	if len(chunks) == 0 {
		return "Sorry, I couldn't find relevant materials to answer your question. " +
			"Please try rephrasing it or check whether the topic is covered yet."
	}

	parts := []string{"Based on available study materials:"}
	limit := len(chunks)
	if limit > 2 {
		limit = 2
	}
	for _, c := range chunks[:limit] {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}

func parseGradeResult(raw string) (*GradeResult, error) {
	// The model sometimes wraps the JSON in prose or a code fence; take the
	// outermost object.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in grader response")
	}

	var result GradeResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("parse grader response failed: %w", err)
	}
	return &result, nil
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}

	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
		i += size - overlap
	}
	return chunks
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scored[T any] struct {
	item  T
	score float64
}

func topItems[T any](items []scored[T], k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	if k > len(items) {
		k = len(items)
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[i].item
	}
	return out
}
