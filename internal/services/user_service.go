package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitcoin-loan/backend/internal/btc"
	"github.com/bitcoin-loan/backend/internal/config"
	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// UserService manages registration, login and BTC address linking.
type UserService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
	log      *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, cfg *config.Config, log *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, cfg: cfg, log: log}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// LinkBTCAddress validates the address against the configured network and
// stores it on the caller's profile, replacing any previous one.
func (s *UserService) LinkBTCAddress(ctx context.Context, userID uuid.UUID, address string) error {
	if err := btc.ValidateAddress(address, s.cfg.BTCNetwork); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidBTCAddress, err)
	}
	return s.userRepo.UpdateBTCAddress(ctx, userID, address)
}

// GetBTCAddress returns the caller's linked address, nil if none is linked.
func (s *UserService) GetBTCAddress(ctx context.Context, userID uuid.UUID) (*string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BTCAddress, nil
}
