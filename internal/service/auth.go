package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// AuthService manages registered accounts. Each account owns its own
// quota ledger, deck store and folders.
type AuthService struct {
	users domain.UserRepository
	jwt   *security.JWTManager
	now   func() time.Time
}

func NewAuthService(users domain.UserRepository, jwt *security.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwt, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a fresh ledger: no free runs used and
// no credits.
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, persistence(err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Credits:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, persistence(err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Account registered")
	return user, nil
}

// Login checks the password and issues a token pair. Unknown emails and
// wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, persistence(err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh trades a refresh token for a new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	user, err := s.Account(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Account loads the account behind a verified token. An account deleted
// since the token was issued counts as bad credentials.
func (s *AuthService) Account(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.TokenPair, error) {
	access, refresh, expiresIn, err := s.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}
