package app

import (
	"fmt"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"golang.org/x/crypto/bcrypt"

	"ai-tutor-backend/internal/model"
	"ai-tutor-backend/internal/pkg/jwtutil"
	"ai-tutor-backend/internal/repository"
)

type AuthService struct {
	userRepo       *repository.UserRepository
	jwtSecret      string
	jwtExpiration  time.Duration
	googleClientID string
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, googleClientID string) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		jwtSecret:      jwtSecret,
		jwtExpiration:  jwtExpiration,
		googleClientID: googleClientID,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		ID:           model.NewID("user"),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issueToken(user)
}

// LoginWithGoogle verifies a Google ID token, provisioning the account on
// first sign-in and backfilling google_id for existing email accounts.
func (s *AuthService) LoginWithGoogle(idToken string) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, ErrInvalidInput
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{s.googleClientID}); err != nil {
		return nil, ErrInvalidGoogleToken
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	user, err := s.userRepo.GetByGoogleID(claimSet.Sub)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(strings.ToLower(claimSet.Email))
		if err != nil {
			return nil, err
		}
		if user != nil && user.GoogleID == "" {
			user.GoogleID = claimSet.Sub
			if err := s.userRepo.Save(user); err != nil {
				return nil, err
			}
		}
	}
	if user == nil {
		user = &model.User{
			ID:       model.NewID("user"),
			Email:    strings.ToLower(claimSet.Email),
			FullName: claimSet.Name,
			GoogleID: claimSet.Sub,
			IsActive: true,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	}

	return s.issueToken(user)
}

func (s *AuthService) GetUserByID(id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
