package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/repository"
)

func setupExamService(t *testing.T, db *gorm.DB, llm *fakeLLM) *ExamService {
	t.Helper()

	rag := setupRAG(t, db, llm)
	return NewExamService(
		repository.NewExamRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewExamAttemptRepository(db),
		repository.NewMinistryQuestionRepository(db),
		repository.NewMinistryAttemptRepository(db),
		rag.service,
		zap.NewNop().Sugar(),
	)
}

func TestCreateExam(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	exam, err := svc.CreateExam(CreateExamInput{Title: "Midterm", Subject: "math", GradeLevel: "9"})
	require.NoError(t, err)
	assert.Equal(t, 60, exam.TotalTimeMinutes)
	assert.Equal(t, 60.0, exam.PassingScore)

	_, err = svc.CreateExam(CreateExamInput{Subject: "math"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddQuestionIncrementsCount(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})
	ctx := context.Background()

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "biology"})
	require.NoError(t, err)

	question, err := svc.AddQuestion(ctx, exam.ID, AddQuestionInput{
		QuestionText: "What is photosynthesis?",
		AnswerText:   "Conversion of light to chemical energy",
	})
	require.NoError(t, err)
	assert.Equal(t, model.QuestionTypeShortAnswer, question.QuestionType)
	assert.Equal(t, "biology", question.Subject)
	assert.NotEmpty(t, question.EmbeddingVector())

	got, err := svc.examRepo.GetByID(exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalQuestions)
}

func TestAddQuestionIndexFailureIsNonFatal(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})
	ctx := context.Background()

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "biology"})
	require.NoError(t, err)

	// empty answer text is rejected before indexing
	_, err = svc.AddQuestion(ctx, exam.ID, AddQuestionInput{QuestionText: "q"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddQuestion(ctx, "exam_missing", AddQuestionInput{QuestionText: "q", AnswerText: "a"})
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestSubmitAttemptScoring(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})
	ctx := context.Background()

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "math"})
	require.NoError(t, err)

	mc, err := svc.AddQuestion(ctx, exam.ID, AddQuestionInput{
		QuestionText:  "2+2?",
		AnswerText:    "4",
		QuestionType:  model.QuestionTypeMultipleChoice,
		Options:       map[string]string{"A": "3", "B": "4"},
		CorrectOption: "b",
	})
	require.NoError(t, err)
	sa, err := svc.AddQuestion(ctx, exam.ID, AddQuestionInput{
		QuestionText: "Powerhouse of the cell?",
		AnswerText:   "Mitochondria",
	})
	require.NoError(t, err)

	attempt, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)
	assert.False(t, attempt.IsCompleted)

	submitted, err := svc.SubmitAttempt(exam.ID, attempt.ID, "user_1", map[string]string{
		mc.ID: "b",            // option letters compare case-insensitively
		sa.ID: "mitochondria", // text answers too
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, submitted.Score)
	assert.True(t, submitted.IsCompleted)
	require.NotNil(t, submitted.SubmittedAt)

	// a completed attempt cannot be resubmitted
	_, err = svc.SubmitAttempt(exam.ID, attempt.ID, "user_1", map[string]string{mc.ID: "B"})
	assert.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestSubmitAttemptPartialAndWrong(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})
	ctx := context.Background()

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "math"})
	require.NoError(t, err)

	q1, err := svc.AddQuestion(ctx, exam.ID, AddQuestionInput{QuestionText: "q1", AnswerText: "alpha"})
	require.NoError(t, err)
	q2, err := svc.AddQuestion(ctx, exam.ID, AddQuestionInput{QuestionText: "q2", AnswerText: "beta"})
	require.NoError(t, err)

	attempt, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	submitted, err := svc.SubmitAttempt(exam.ID, attempt.ID, "user_1", map[string]string{
		q1.ID: "alpha",
		q2.ID: "wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, submitted.Score)
}

func TestSubmitAttemptZeroQuestions(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	exam, err := svc.CreateExam(CreateExamInput{Title: "Empty", Subject: "math"})
	require.NoError(t, err)

	attempt, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	submitted, err := svc.SubmitAttempt(exam.ID, attempt.ID, "user_1", map[string]string{})
	require.NoError(t, err)
	assert.Zero(t, submitted.Score)
	assert.True(t, submitted.IsCompleted)
	require.NotNil(t, submitted.SubmittedAt)
}

func TestSubmitAttemptUnknownQuestion(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "math"})
	require.NoError(t, err)

	attempt, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(exam.ID, attempt.ID, "user_1", map[string]string{"q_bogus": "x"})
	assert.ErrorIs(t, err, ErrAnswerNotInExam)
}

func TestSubmitAttemptWrongUser(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "math"})
	require.NoError(t, err)

	attempt, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(exam.ID, attempt.ID, "user_2", map[string]string{})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestRetakeCreatesFreshAttempt(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	exam, err := svc.CreateExam(CreateExamInput{Title: "Quiz", Subject: "math"})
	require.NoError(t, err)

	first, err := svc.StartAttempt(exam.ID, "user_1")
	require.NoError(t, err)
	second, err := svc.Retake(exam.ID, "user_1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	attempts, err := svc.ListUserAttempts("user_1", "", 0, 20)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestMinistryQuestionCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	question, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject:      "physics",
		Grade:        "12",
		Year:         2023,
		Session:      "first",
		QuestionText: "State Newton's second law.",
		AnswerKey:    "F = ma",
		QuestionType: model.QuestionTypeShortAnswer,
	})
	require.NoError(t, err)

	got, err := svc.GetMinistryQuestion(question.ID)
	require.NoError(t, err)
	assert.Equal(t, 2023, got.Year)

	listed, err := svc.ListMinistryQuestions(repository.MinistryQuestionFilter{Subject: "physics", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.DeleteMinistryQuestion(question.ID))
	_, err = svc.GetMinistryQuestion(question.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestCreateExamFromMinistry(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})

	q1, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", Grade: "12", QuestionText: "q1", AnswerKey: "a1",
		QuestionType: model.QuestionTypeMultipleChoice,
		Options:      map[string]string{"A": "x", "B": "y"}, CorrectOption: "A",
	})
	require.NoError(t, err)
	q2, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", Grade: "12", QuestionText: "q2", AnswerKey: "a2",
	})
	require.NoError(t, err)

	exam, err := svc.CreateExamFromMinistry(CreateMinistryExamInput{
		QuestionIDs: []string{q1.ID, q2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "physics", exam.Subject)
	assert.Equal(t, "12", exam.GradeLevel)
	assert.Equal(t, 2, exam.TotalQuestions)

	questions, err := svc.GetExamMinistryQuestions(exam.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	// every referenced question must exist
	_, err = svc.CreateExamFromMinistry(CreateMinistryExamInput{
		QuestionIDs: []string{q1.ID, "mq_missing"},
	})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestMinistryAttemptLifecycle(t *testing.T) {
	db := setupTestDB(t)
	llm := &fakeLLM{chatContent: `{"score": 0.8, "feedback": "Close enough", "confidence": 0.9}`}
	svc := setupExamService(t, db, llm)
	ctx := context.Background()

	mcq, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", Grade: "12", QuestionText: "pick one",
		QuestionType: model.QuestionTypeMultipleChoice,
		Options:      map[string]string{"A": "x", "B": "y"}, CorrectOption: "B",
	})
	require.NoError(t, err)
	essay, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", Grade: "12",
		QuestionText: "Explain inertia.", AnswerKey: "Resistance to change in motion",
		QuestionType: model.QuestionTypeEssay,
	})
	require.NoError(t, err)

	exam, err := svc.CreateExamFromMinistry(CreateMinistryExamInput{QuestionIDs: []string{mcq.ID, essay.ID}})
	require.NoError(t, err)

	attempt, err := svc.StartMinistryAttempt(exam.ID, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, attempt.MaxScore)

	// starting again resumes the active attempt
	again, err := svc.StartMinistryAttempt(exam.ID, "user_1")
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, again.ID)

	submitted, err := svc.SubmitMinistryAttempt(ctx, exam.ID, "user_1", map[string]string{
		mcq.ID:   "b",
		essay.ID: "An object resists changes to its motion.",
	})
	require.NoError(t, err)
	assert.True(t, submitted.IsCompleted)
	assert.InDelta(t, 1.8, submitted.TotalScore, 1e-9)
	assert.Equal(t, "Close enough", submitted.AIFeedback[essay.ID])

	// no active attempt remains after submission
	_, err = svc.SubmitMinistryAttempt(ctx, exam.ID, "user_1", map[string]string{})
	assert.ErrorIs(t, err, ErrNoActiveAttempt)

	attempts, err := svc.ListMinistryAttempts(exam.ID, "user_1")
	require.NoError(t, err)
	assert.Len(t, attempts, 1)

	got, err := svc.GetMinistryAttempt(exam.ID, attempt.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
}

func TestMinistryGradingFailureScoresZero(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{chatStatus: http.StatusInternalServerError})
	ctx := context.Background()

	essay, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", QuestionText: "Explain gravity.", AnswerKey: "Mass attracts mass",
		QuestionType: model.QuestionTypeEssay,
	})
	require.NoError(t, err)

	exam, err := svc.CreateExamFromMinistry(CreateMinistryExamInput{QuestionIDs: []string{essay.ID}})
	require.NoError(t, err)

	_, err = svc.StartMinistryAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	submitted, err := svc.SubmitMinistryAttempt(ctx, exam.ID, "user_1", map[string]string{
		essay.ID: "Things fall down.",
	})
	require.NoError(t, err)
	assert.Zero(t, submitted.TotalScore)
	assert.True(t, submitted.IsCompleted)
	assert.NotEmpty(t, submitted.AIFeedback[essay.ID])
}

func TestSubmitMinistryAnswerNotInExam(t *testing.T) {
	db := setupTestDB(t)
	svc := setupExamService(t, db, &fakeLLM{})
	ctx := context.Background()

	q, err := svc.AddMinistryQuestion(MinistryQuestionInput{
		Subject: "physics", QuestionText: "q", AnswerKey: "a",
	})
	require.NoError(t, err)

	exam, err := svc.CreateExamFromMinistry(CreateMinistryExamInput{QuestionIDs: []string{q.ID}})
	require.NoError(t, err)

	_, err = svc.StartMinistryAttempt(exam.ID, "user_1")
	require.NoError(t, err)

	_, err = svc.SubmitMinistryAttempt(ctx, exam.ID, "user_1", map[string]string{"mq_other": "x"})
	assert.ErrorIs(t, err, ErrAnswerNotInExam)
}
