package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-tutor-backend/internal/pkg/jwtutil"
	"ai-tutor-backend/internal/repository"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := setupTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), "test-secret", time.Hour, "test-client-id")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)

	result, err := svc.Register(RegisterInput{
		Email:    "Student@Example.com",
		Password: "correct-horse",
		FullName: "Test Student",
	})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", result.User.Email)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.User.PasswordHash)

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	loggedIn, err := svc.Login(LoginInput{Email: "student@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, loggedIn.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "DUP@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "a@b.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Login(LoginInput{Email: "ghost@b.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginWithGoogleBadToken(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.LoginWithGoogle("not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)

	_, err = svc.LoginWithGoogle("  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserByID(t *testing.T) {
	svc := setupAuthService(t)

	result, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	user, err := svc.GetUserByID(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	missing, err := svc.GetUserByID("user_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
