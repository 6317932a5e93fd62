package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ai-tutor-backend/internal/cache"
	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/platform/rabbitmq"
	"ai-tutor-backend/internal/repository"
)

// TutoringService runs interactive study sessions. Messages are published
// to RabbitMQ and persisted asynchronously; reads go through the Redis
// history cache unless the session was just written to.
type TutoringService struct {
	sessionRepo *repository.TutoringSessionRepository
	messageRepo *repository.SessionMessageRepository
	history     *cache.HistoryCache
	publisher   *rabbitmq.MessagePublisher
	rag         *RAGService
	log         *zap.SugaredLogger
}

func NewTutoringService(
	sessionRepo *repository.TutoringSessionRepository,
	messageRepo *repository.SessionMessageRepository,
	history *cache.HistoryCache,
	publisher *rabbitmq.MessagePublisher,
	rag *RAGService,
	log *zap.SugaredLogger,
) *TutoringService {
	return &TutoringService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		history:     history,
		publisher:   publisher,
		rag:         rag,
		log:         log,
	}
}

type StartSessionInput struct {
	Topic   string
	Subject string
	Grade   string
	Title   string
}

func (s *TutoringService) StartSession(userID string, input StartSessionInput) (*model.TutoringSession, error) {
	topic := strings.TrimSpace(input.Topic)
	subject := strings.TrimSpace(input.Subject)
	if topic == "" || subject == "" {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Tutoring: " + topic
	}

	session := &model.TutoringSession{
		ID:      model.NewID("ts"),
		UserID:  userID,
		Topic:   topic,
		Subject: subject,
		Grade:   strings.TrimSpace(input.Grade),
		Title:   title,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Ask answers a question in a session's context, records both sides of the
// exchange through the message queue and tracks which materials were used.
func (s *TutoringService) Ask(ctx context.Context, sessionID, userID, question string) (*RAGAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.getOwnedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	answer, err := s.rag.Answer(ctx, AnswerInput{
		Query:   question,
		Subject: session.Subject,
	})
	if err != nil {
		return nil, err
	}

	// Mark the history dirty before publishing so a concurrent read can't
	// re-cache a stale snapshot while the worker drains the queue.
	if err := s.history.MarkDirty(ctx, session.ID); err != nil {
		s.log.Warnw("mark history dirty failed", "session_id", session.ID, "error", err)
	}
	if err := s.history.DeleteHistory(ctx, session.ID); err != nil {
		s.log.Warnw("invalidate history cache failed", "session_id", session.ID, "error", err)
	}

	userMsg := model.SessionMessage{
		SessionID: session.ID,
		UserID:    userID,
		Role:      "user",
		Content:   question,
	}
	assistantMsg := model.SessionMessage{
		SessionID: session.ID,
		UserID:    userID,
		Role:      "assistant",
		Content:   answer.Answer,
	}
	if err := s.publisher.Publish(ctx, userMsg); err != nil {
		s.log.Errorw("publish user message failed", "session_id", session.ID, "error", err)
		return nil, ErrMessageEnqueue
	}
	if err := s.publisher.Publish(ctx, assistantMsg); err != nil {
		s.log.Errorw("publish assistant message failed", "session_id", session.ID, "error", err)
		return nil, ErrMessageEnqueue
	}

	if err := s.trackMaterials(session, answer.Sources); err != nil {
		s.log.Warnw("update materials used failed", "session_id", session.ID, "error", err)
	}

	return answer, nil
}

func (s *TutoringService) GetSession(sessionID, userID string) (*model.TutoringSession, error) {
	return s.getOwnedSession(sessionID, userID)
}

func (s *TutoringService) ListSessions(userID, subject string, offset, limit int) ([]model.TutoringSession, error) {
	return s.sessionRepo.ListByUserID(userID, subject, offset, limit)
}

func (s *TutoringService) RateSession(sessionID, userID string, rating int) (*model.TutoringSession, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	session, err := s.getOwnedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.Rating = &rating
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes the session, its messages and its cached history.
func (s *TutoringService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.getOwnedSession(sessionID, userID)
	if err != nil {
		return err
	}

	if err := s.history.DeleteHistory(ctx, session.ID); err != nil {
		s.log.Warnw("delete history cache failed", "session_id", session.ID, "error", err)
	}
	if err := s.messageRepo.DeleteBySessionID(session.ID); err != nil {
		return err
	}
	return s.sessionRepo.DeleteByIDAndUserID(session.ID, userID)
}

// DeleteAllSessions tears down every session a user owns, cache included.
// Used when the account itself is deleted.
func (s *TutoringService) DeleteAllSessions(ctx context.Context, userID string) error {
	sessions, err := s.sessionRepo.ListAllByUserID(userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.history.DeleteHistory(ctx, session.ID); err != nil {
			s.log.Warnw("delete history cache failed", "session_id", session.ID, "error", err)
		}
	}
	if err := s.messageRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	return s.sessionRepo.DeleteByUserID(userID)
}

// GetMessages reads the session transcript cache-aside. A dirty marker
// (set on every Ask) forces a database read and skips re-caching until the
// persistence worker has caught up.
func (s *TutoringService) GetMessages(ctx context.Context, sessionID, userID string, limit int) ([]model.SessionMessage, error) {
	session, err := s.getOwnedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	dirty, err := s.history.IsDirty(ctx, session.ID)
	if err != nil {
		s.log.Warnw("check dirty marker failed", "session_id", session.ID, "error", err)
		dirty = true
	}

	if !dirty {
		if cached, ok, err := s.history.GetHistory(ctx, session.ID); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.Warnw("read history cache failed", "session_id", session.ID, "error", err)
		}
	}

	messages, err := s.messageRepo.ListBySessionID(session.ID, limit)
	if err != nil {
		return nil, err
	}

	if !dirty {
		if err := s.history.SetHistory(ctx, session.ID, messages); err != nil {
			s.log.Warnw("write history cache failed", "session_id", session.ID, "error", err)
		}
	}
	return messages, nil
}

func (s *TutoringService) getOwnedSession(sessionID, userID string) (*model.TutoringSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *TutoringService) trackMaterials(session *model.TutoringSession, sources []RAGSource) error {
	if len(sources) == 0 {
		return nil
	}

	existing := session.MaterialIDs()
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	changed := false
	for _, src := range sources {
		if src.Type != "study_material" || seen[src.ID] {
			continue
		}
		existing = append(existing, src.ID)
		seen[src.ID] = true
		changed = true
	}
	if !changed {
		return nil
	}

	session.SetMaterialIDs(existing)
	return s.sessionRepo.Save(session)
}
