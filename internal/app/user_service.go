package app

import (
	"context"
	"math"
	"strings"
	"time"

	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/repository"
)

const passingScoreThreshold = 60.0

// UserService covers profile management and cross-domain learning
// statistics.
type UserService struct {
	userRepo        *repository.UserRepository
	attemptRepo     *repository.ExamAttemptRepository
	ministryRepo    *repository.MinistryAttemptRepository
	sessionRepo     *repository.TutoringSessionRepository
	messageRepo     *repository.SessionMessageRepository
	tutoringService *TutoringService
}

func NewUserService(
	userRepo *repository.UserRepository,
	attemptRepo *repository.ExamAttemptRepository,
	ministryRepo *repository.MinistryAttemptRepository,
	sessionRepo *repository.TutoringSessionRepository,
	messageRepo *repository.SessionMessageRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		attemptRepo:  attemptRepo,
		ministryRepo: ministryRepo,
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
	}
}

func (s *UserService) GetUser(id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateUserInput struct {
	FullName *string
	Email    *string
}

func (s *UserService) UpdateUser(id string, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, ErrInvalidInput
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}

	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account and everything hanging off it: exam and
// ministry attempts, tutoring sessions and their messages.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	if s.tutoringService != nil {
		if err := s.tutoringService.DeleteAllSessions(ctx, user.ID); err != nil {
			return err
		}
	} else {
		if err := s.messageRepo.DeleteByUserID(user.ID); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByUserID(user.ID); err != nil {
			return err
		}
	}

	if err := s.attemptRepo.DeleteByUserID(user.ID); err != nil {
		return err
	}
	if err := s.ministryRepo.DeleteByUserID(user.ID); err != nil {
		return err
	}
	return s.userRepo.Delete(user.ID)
}

// SetTutoringService lets the tutoring service own session teardown (cache
// invalidation included) during account deletion. Wired at bootstrap.
func (s *UserService) SetTutoringService(ts *TutoringService) {
	s.tutoringService = ts
}

// SubjectProgress summarizes completed exam attempts for one subject.
type SubjectProgress struct {
	Total        int     `json:"total"`
	Passed       int     `json:"passed"`
	AverageScore float64 `json:"average_score"`
}

type LearningProgress struct {
	UserID                string                     `json:"user_id"`
	TotalExamsTaken       int                        `json:"total_exams_taken"`
	ExamsPassed           int                        `json:"exams_passed"`
	AverageExamScore      float64                    `json:"average_exam_score"`
	TotalTutoringSessions int                        `json:"total_tutoring_sessions"`
	AverageSessionRating  float64                    `json:"average_session_rating"`
	ExamsBySubject        map[string]SubjectProgress `json:"exams_by_subject"`
	LastActivity          *time.Time                 `json:"last_activity"`
}

// GetLearningProgress aggregates completed exam attempts and tutoring
// sessions into a per-user snapshot.
func (s *UserService) GetLearningProgress(id string) (*LearningProgress, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.ListCompletedByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListAllByUserID(user.ID)
	if err != nil {
		return nil, err
	}

	progress := &LearningProgress{
		UserID:                user.ID,
		TotalExamsTaken:       len(attempts),
		TotalTutoringSessions: len(sessions),
		ExamsBySubject:        make(map[string]SubjectProgress),
	}

	var scoreSum float64
	subjectSums := make(map[string]float64)
	var lastActivity time.Time

	for _, attempt := range attempts {
		scoreSum += attempt.Score
		if attempt.Score >= passingScoreThreshold {
			progress.ExamsPassed++
		}

		subject := "unknown"
		if attempt.Exam != nil && attempt.Exam.Subject != "" {
			subject = attempt.Exam.Subject
		}
		sp := progress.ExamsBySubject[subject]
		sp.Total++
		if attempt.Score >= passingScoreThreshold {
			sp.Passed++
		}
		progress.ExamsBySubject[subject] = sp
		subjectSums[subject] += attempt.Score

		if attempt.SubmittedAt != nil && attempt.SubmittedAt.After(lastActivity) {
			lastActivity = *attempt.SubmittedAt
		}
	}
	if len(attempts) > 0 {
		progress.AverageExamScore = round2(scoreSum / float64(len(attempts)))
	}
	for subject, sp := range progress.ExamsBySubject {
		sp.AverageScore = round2(subjectSums[subject] / float64(sp.Total))
		progress.ExamsBySubject[subject] = sp
	}

	var ratingSum, ratingCount int
	for _, session := range sessions {
		if session.Rating != nil {
			ratingSum += *session.Rating
			ratingCount++
		}
		if session.UpdatedAt.After(lastActivity) {
			lastActivity = session.UpdatedAt
		}
	}
	if ratingCount > 0 {
		progress.AverageSessionRating = round2(float64(ratingSum) / float64(ratingCount))
	}

	if !lastActivity.IsZero() {
		progress.LastActivity = &lastActivity
	}
	return progress, nil
}

func (s *UserService) GetExamHistory(id, subject string, offset, limit int) ([]model.ExamAttempt, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByUserID(id, subject, offset, limit)
}

func (s *UserService) GetTutoringHistory(id, subject string, offset, limit int) ([]model.TutoringSession, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByUserID(id, subject, offset, limit)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
