package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/repository"
)

// ExamService manages authored exams, ministry question banks and the
// attempt lifecycle for both.
type ExamService struct {
	examRepo            *repository.ExamRepository
	questionRepo        *repository.QuestionRepository
	attemptRepo         *repository.ExamAttemptRepository
	ministryRepo        *repository.MinistryQuestionRepository
	ministryAttemptRepo *repository.MinistryAttemptRepository
	rag                 *RAGService
	log                 *zap.SugaredLogger
}

func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.ExamAttemptRepository,
	ministryRepo *repository.MinistryQuestionRepository,
	ministryAttemptRepo *repository.MinistryAttemptRepository,
	rag *RAGService,
	log *zap.SugaredLogger,
) *ExamService {
	return &ExamService{
		examRepo:            examRepo,
		questionRepo:        questionRepo,
		attemptRepo:         attemptRepo,
		ministryRepo:        ministryRepo,
		ministryAttemptRepo: ministryAttemptRepo,
		rag:                 rag,
		log:                 log,
	}
}

type CreateExamInput struct {
	Title               string
	Subject             string
	GradeLevel          string
	Description         string
	TotalTimeMinutes    int
	PassingScore        float64
	Instructions        string
	MinistryQuestionIDs []string
}

func (s *ExamService) CreateExam(input CreateExamInput) (*model.Exam, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Subject) == "" {
		return nil, ErrInvalidInput
	}
	if input.TotalTimeMinutes <= 0 {
		input.TotalTimeMinutes = 60
	}
	if input.PassingScore <= 0 {
		input.PassingScore = 60
	}

	exam := &model.Exam{
		ID:               model.NewID("exam"),
		Title:            strings.TrimSpace(input.Title),
		Subject:          strings.TrimSpace(input.Subject),
		GradeLevel:       strings.TrimSpace(input.GradeLevel),
		Description:      input.Description,
		TotalTimeMinutes: input.TotalTimeMinutes,
		PassingScore:     input.PassingScore,
		Instructions:     input.Instructions,
	}

	if len(input.MinistryQuestionIDs) > 0 {
		questions, err := s.ministryRepo.ListByIDs(input.MinistryQuestionIDs)
		if err != nil {
			return nil, err
		}
		if len(questions) != len(input.MinistryQuestionIDs) {
			return nil, ErrQuestionNotFound
		}
		exam.MinistryQuestions = questions
		exam.TotalQuestions = len(questions)
	}

	if err := s.examRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListExams(subject, gradeLevel string, offset, limit int) ([]model.Exam, error) {
	return s.examRepo.List(subject, gradeLevel, offset, limit)
}

func (s *ExamService) GetExam(id string) (*model.Exam, []model.Question, error) {
	exam, err := s.getExam(id)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questionRepo.ListByExamID(exam.ID)
	if err != nil {
		return nil, nil, err
	}
	return exam, questions, nil
}

type AddQuestionInput struct {
	QuestionText    string
	AnswerText      string
	Topic           string
	QuestionType    string
	DifficultyLevel string
	Options         map[string]string
	CorrectOption   string
}

// AddQuestion attaches a question to an exam and indexes it for retrieval.
// Indexing is best-effort: a failed embedding never loses the question.
func (s *ExamService) AddQuestion(ctx context.Context, examID string, input AddQuestionInput) (*model.Question, error) {
	exam, err := s.getExam(examID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.QuestionText) == "" || strings.TrimSpace(input.AnswerText) == "" {
		return nil, ErrInvalidInput
	}

	questionType := strings.TrimSpace(input.QuestionType)
	if questionType == "" {
		questionType = model.QuestionTypeShortAnswer
	}
	difficulty := strings.TrimSpace(input.DifficultyLevel)
	if difficulty == "" {
		difficulty = "intermediate"
	}

	question := &model.Question{
		ID:              model.NewID("q"),
		ExamID:          exam.ID,
		QuestionText:    strings.TrimSpace(input.QuestionText),
		AnswerText:      strings.TrimSpace(input.AnswerText),
		Topic:           strings.TrimSpace(input.Topic),
		Subject:         exam.Subject,
		QuestionType:    questionType,
		DifficultyLevel: difficulty,
		CorrectOption:   strings.ToUpper(strings.TrimSpace(input.CorrectOption)),
	}
	if len(input.Options) > 0 {
		question.Options = marshalJSON(input.Options)
	}

	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	if err := s.examRepo.IncrementQuestionCount(exam.ID); err != nil {
		return nil, err
	}

	if err := s.rag.IndexQuestion(ctx, question); err != nil {
		s.log.Warnw("question indexing failed", "question_id", question.ID, "error", err)
	}
	return question, nil
}

func (s *ExamService) ListQuestions(examID string) ([]model.Question, error) {
	exam, err := s.getExam(examID)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.ListByExamID(exam.ID)
}

func (s *ExamService) StartAttempt(examID, userID string) (*model.ExamAttempt, error) {
	exam, err := s.getExam(examID)
	if err != nil {
		return nil, err
	}

	attempt := &model.ExamAttempt{
		ID:      model.NewID("att"),
		UserID:  userID,
		ExamID:  exam.ID,
		Answers: datatypes.JSONMap{},
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAttempt grades the submitted answers and finalizes the attempt.
// Score is correct/total*100; an exam with no questions scores 0. A
// completed attempt cannot be resubmitted.
func (s *ExamService) SubmitAttempt(examID, attemptID, userID string, answers map[string]string) (*model.ExamAttempt, error) {
	attempt, err := s.attemptRepo.GetByIDAndUser(attemptID, examID, userID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.IsCompleted {
		return nil, ErrAttemptCompleted
	}

	questions, err := s.questionRepo.ListByExamID(examID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	for questionID := range answers {
		if _, ok := byID[questionID]; !ok {
			return nil, ErrAnswerNotInExam
		}
	}

	correct := 0
	stored := datatypes.JSONMap{}
	for questionID, answer := range answers {
		stored[questionID] = answer
		if isCorrectAnswer(byID[questionID], answer) {
			correct++
		}
	}

	total := len(questions)
	if total < 1 {
		total = 1
	}

	now := time.Now()
	attempt.Answers = stored
	attempt.Score = round2(float64(correct) / float64(total) * 100)
	attempt.IsCompleted = true
	attempt.SubmittedAt = &now
	attempt.TimeTakenSeconds = int(now.Sub(attempt.StartedAt).Seconds())

	if err := s.attemptRepo.Save(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *ExamService) GetAttempt(examID, attemptID, userID string) (*model.ExamAttempt, error) {
	attempt, err := s.attemptRepo.GetByIDAndUser(attemptID, examID, userID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// Retake starts a fresh attempt for an exam the user has already taken.
func (s *ExamService) Retake(examID, userID string) (*model.ExamAttempt, error) {
	return s.StartAttempt(examID, userID)
}

func (s *ExamService) ListUserAttempts(userID, subject string, offset, limit int) ([]model.ExamAttempt, error) {
	return s.attemptRepo.ListByUserID(userID, subject, offset, limit)
}

type MinistryQuestionInput struct {
	Subject         string
	Grade           string
	Year            int
	Session         string
	QuestionText    string
	AnswerKey       string
	QuestionType    string
	Options         map[string]string
	CorrectOption   string
	DifficultyLevel string
}

func (s *ExamService) AddMinistryQuestion(input MinistryQuestionInput) (*model.MinistryQuestion, error) {
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.QuestionText) == "" {
		return nil, ErrInvalidInput
	}

	questionType := strings.TrimSpace(input.QuestionType)
	if questionType == "" {
		questionType = model.QuestionTypeShortAnswer
	}
	difficulty := strings.TrimSpace(input.DifficultyLevel)
	if difficulty == "" {
		difficulty = "intermediate"
	}

	question := &model.MinistryQuestion{
		ID:              model.NewID("mq"),
		Subject:         strings.TrimSpace(input.Subject),
		Grade:           strings.TrimSpace(input.Grade),
		Year:            input.Year,
		Session:         strings.TrimSpace(input.Session),
		QuestionText:    strings.TrimSpace(input.QuestionText),
		AnswerKey:       strings.TrimSpace(input.AnswerKey),
		QuestionType:    questionType,
		CorrectOption:   strings.ToUpper(strings.TrimSpace(input.CorrectOption)),
		DifficultyLevel: difficulty,
	}
	if len(input.Options) > 0 {
		question.Options = marshalJSON(input.Options)
	}

	if err := s.ministryRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *ExamService) ListMinistryQuestions(filter repository.MinistryQuestionFilter) ([]model.MinistryQuestion, error) {
	return s.ministryRepo.List(filter)
}

func (s *ExamService) GetMinistryQuestion(id string) (*model.MinistryQuestion, error) {
	question, err := s.ministryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *ExamService) DeleteMinistryQuestion(id string) error {
	if _, err := s.GetMinistryQuestion(id); err != nil {
		return err
	}
	return s.ministryRepo.Delete(id)
}

type CreateMinistryExamInput struct {
	Title            string
	QuestionIDs      []string
	TotalTimeMinutes int
	Instructions     string
}

// CreateExamFromMinistry builds an exam from an explicit list of ministry
// questions. Every ID must resolve; subject and grade come from the first
// question.
func (s *ExamService) CreateExamFromMinistry(input CreateMinistryExamInput) (*model.Exam, error) {
	if len(input.QuestionIDs) == 0 {
		return nil, ErrInvalidInput
	}

	questions, err := s.ministryRepo.ListByIDs(input.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) != len(input.QuestionIDs) {
		return nil, ErrQuestionNotFound
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Ministry Exam: " + questions[0].Subject
	}
	if input.TotalTimeMinutes <= 0 {
		input.TotalTimeMinutes = 60
	}

	exam := &model.Exam{
		ID:                model.NewID("exam"),
		Title:             title,
		Subject:           questions[0].Subject,
		GradeLevel:        questions[0].Grade,
		TotalQuestions:    len(questions),
		TotalTimeMinutes:  input.TotalTimeMinutes,
		PassingScore:      60,
		Instructions:      input.Instructions,
		MinistryQuestions: questions,
	}
	if err := s.examRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExamMinistryQuestions(examID string) ([]model.MinistryQuestion, error) {
	exam, err := s.examRepo.GetWithMinistryQuestions(examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam.MinistryQuestions, nil
}

// StartMinistryAttempt opens an attempt against a ministry-backed exam.
// An existing active attempt is returned instead of creating another.
func (s *ExamService) StartMinistryAttempt(examID, userID string) (*model.MinistryExamAttempt, error) {
	exam, err := s.examRepo.GetWithMinistryQuestions(examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	active, err := s.ministryAttemptRepo.GetActive(exam.ID, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	maxScore := 100.0
	if len(exam.MinistryQuestions) > 0 {
		maxScore = float64(len(exam.MinistryQuestions))
	}

	attempt := &model.MinistryExamAttempt{
		ID:         model.NewID("mea"),
		UserID:     userID,
		ExamID:     exam.ID,
		Answers:    datatypes.JSONMap{},
		Scores:     datatypes.JSONMap{},
		AIFeedback: datatypes.JSONMap{},
		MaxScore:   maxScore,
	}
	if err := s.ministryAttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitMinistryAttempt grades per question: multiple choice against the
// correct option, everything else via the LLM grader. A grader failure
// scores the question 0 and the submission proceeds.
func (s *ExamService) SubmitMinistryAttempt(ctx context.Context, examID, userID string, answers map[string]string) (*model.MinistryExamAttempt, error) {
	exam, err := s.examRepo.GetWithMinistryQuestions(examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	attempt, err := s.ministryAttemptRepo.GetActive(exam.ID, userID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNoActiveAttempt
	}

	byID := make(map[string]*model.MinistryQuestion, len(exam.MinistryQuestions))
	for i := range exam.MinistryQuestions {
		byID[exam.MinistryQuestions[i].ID] = &exam.MinistryQuestions[i]
	}
	for questionID := range answers {
		if _, ok := byID[questionID]; !ok {
			return nil, ErrAnswerNotInExam
		}
	}

	storedAnswers := datatypes.JSONMap{}
	scores := datatypes.JSONMap{}
	feedback := datatypes.JSONMap{}
	var totalScore float64

	for questionID, answer := range answers {
		question := byID[questionID]
		storedAnswers[questionID] = answer

		if question.QuestionType == model.QuestionTypeMultipleChoice {
			score := 0.0
			if strings.ToUpper(strings.TrimSpace(answer)) == question.CorrectOption {
				score = 1.0
			}
			scores[questionID] = score
			totalScore += score
			continue
		}

		result, err := s.rag.GradeAnswer(ctx, GradeInput{
			QuestionText:  question.QuestionText,
			ModelAnswer:   question.AnswerKey,
			StudentAnswer: answer,
			Subject:       question.Subject,
			MaxScore:      1,
		})
		if err != nil {
			s.log.Warnw("llm grading failed, scoring zero",
				"question_id", questionID, "attempt_id", attempt.ID, "error", err)
			scores[questionID] = 0.0
			feedback[questionID] = "Automatic grading was unavailable for this answer."
			continue
		}
		scores[questionID] = result.Score
		feedback[questionID] = result.Feedback
		totalScore += result.Score
	}

	now := time.Now()
	attempt.Answers = storedAnswers
	attempt.Scores = scores
	attempt.AIFeedback = feedback
	attempt.TotalScore = round2(totalScore)
	attempt.IsCompleted = true
	attempt.SubmittedAt = &now
	attempt.TimeTakenSeconds = int(now.Sub(attempt.StartedAt).Seconds())

	if err := s.ministryAttemptRepo.Save(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *ExamService) ListMinistryAttempts(examID, userID string) ([]model.MinistryExamAttempt, error) {
	if _, err := s.getExam(examID); err != nil {
		return nil, err
	}
	return s.ministryAttemptRepo.ListByExamID(examID, userID)
}

func (s *ExamService) GetMinistryAttempt(examID, attemptID string) (*model.MinistryExamAttempt, error) {
	attempt, err := s.ministryAttemptRepo.GetByIDAndExam(attemptID, examID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *ExamService) getExam(id string) (*model.Exam, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	exam, err := s.examRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// isCorrectAnswer compares a submitted answer against the question key:
// option letter for multiple choice, case-insensitive text otherwise.
func isCorrectAnswer(question *model.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if question.QuestionType == model.QuestionTypeMultipleChoice && question.CorrectOption != "" {
		return strings.ToUpper(answer) == question.CorrectOption
	}
	return strings.EqualFold(answer, strings.TrimSpace(question.AnswerText))
}
