package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-tutor-backend/internal/repository"
)

// Ask, message reads and deletes need Redis and RabbitMQ; the session
// lifecycle below only touches MySQL.
func setupTutoringService(t *testing.T) *TutoringService {
	t.Helper()
	db := setupTestDB(t)

	return NewTutoringService(
		repository.NewTutoringSessionRepository(db),
		repository.NewSessionMessageRepository(db),
		nil, nil, nil,
		zap.NewNop().Sugar(),
	)
}

func TestStartSessionDefaultsTitle(t *testing.T) {
	svc := setupTutoringService(t)

	session, err := svc.StartSession("user_1", StartSessionInput{
		Topic:   "quadratic equations",
		Subject: "math",
		Grade:   "10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tutoring: quadratic equations", session.Title)
	assert.Nil(t, session.Rating)
}

func TestStartSessionValidation(t *testing.T) {
	svc := setupTutoringService(t)

	_, err := svc.StartSession("user_1", StartSessionInput{Subject: "math"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.StartSession("user_1", StartSessionInput{Topic: "algebra"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSessionOwnership(t *testing.T) {
	svc := setupTutoringService(t)

	session, err := svc.StartSession("user_1", StartSessionInput{Topic: "algebra", Subject: "math"})
	require.NoError(t, err)

	got, err := svc.GetSession(session.ID, "user_1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = svc.GetSession(session.ID, "user_2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRateSession(t *testing.T) {
	svc := setupTutoringService(t)

	session, err := svc.StartSession("user_1", StartSessionInput{Topic: "algebra", Subject: "math"})
	require.NoError(t, err)

	rated, err := svc.RateSession(session.ID, "user_1", 5)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)

	_, err = svc.RateSession(session.ID, "user_1", 0)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.RateSession(session.ID, "user_1", 6)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestTrackMaterialsMergesSourceIDs(t *testing.T) {
	svc := setupTutoringService(t)

	session, err := svc.StartSession("user_1", StartSessionInput{Topic: "algebra", Subject: "math"})
	require.NoError(t, err)

	require.NoError(t, svc.trackMaterials(session, []RAGSource{
		{Type: "study_material", ID: "mat_a"},
		{Type: "study_material", ID: "mat_b"},
		{Type: "reference_question", ID: "q_x"},
	}))
	assert.Equal(t, []string{"mat_a", "mat_b"}, session.MaterialIDs())

	// repeats dedupe, new IDs append, and the merge persists
	require.NoError(t, svc.trackMaterials(session, []RAGSource{
		{Type: "study_material", ID: "mat_a"},
		{Type: "study_material", ID: "mat_c"},
	}))
	assert.Equal(t, []string{"mat_a", "mat_b", "mat_c"}, session.MaterialIDs())

	stored, err := svc.GetSession(session.ID, "user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mat_a", "mat_b", "mat_c"}, stored.MaterialIDs())
}

func TestListSessionsBySubject(t *testing.T) {
	svc := setupTutoringService(t)

	_, err := svc.StartSession("user_1", StartSessionInput{Topic: "algebra", Subject: "math"})
	require.NoError(t, err)
	_, err = svc.StartSession("user_1", StartSessionInput{Topic: "cells", Subject: "biology"})
	require.NoError(t, err)
	_, err = svc.StartSession("user_2", StartSessionInput{Topic: "forces", Subject: "physics"})
	require.NoError(t, err)

	all, err := svc.ListSessions("user_1", "", 0, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mathOnly, err := svc.ListSessions("user_1", "math", 0, 20)
	require.NoError(t, err)
	require.Len(t, mathOnly, 1)
	assert.Equal(t, "algebra", mathOnly[0].Topic)
}
