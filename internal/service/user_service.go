package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/repository"
	"github.com/wearvault/storefront-service/pkg/auth"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserService struct {
	users  UserStore
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewUserService(users UserStore, tokens *auth.TokenManager, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Signup creates a profile and logs the new user straight in.
func (s *UserService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResponse, error) {
	existing, _ := s.users.GetProfileByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Wishlist:     []string{},
		Orders:       []string{},
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		s.logger.Error("Failed to create profile",
			zap.String("email", req.Email),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("User signed up", zap.String("user_id", profile.UserID))
	return s.authResponse(profile)
}

func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	profile, err := s.users.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(profile.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(profile)
}

func (s *UserService) authResponse(profile *domain.UserProfile) (*domain.AuthResponse, error) {
	identity := domain.Identity{
		ID:    profile.UserID,
		Email: profile.Email,
		Name:  profile.Name,
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{User: identity, Token: token}, nil
}

func (s *UserService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.UserProfile, error) {
	if identity.ID == "" {
		return nil, ErrUnauthorized
	}

	profile, err := s.users.GetProfile(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// AddToWishlist is a set insert: adding a product that is already
// wishlisted changes nothing.
func (s *UserService) AddToWishlist(ctx context.Context, identity domain.Identity, productID string) error {
	profile, err := s.GetProfile(ctx, identity)
	if err != nil {
		return err
	}

	if profile.InWishlist(productID) {
		return nil
	}

	profile.Wishlist = append(profile.Wishlist, productID)
	if err := s.users.PutProfile(ctx, profile); err != nil {
		s.logger.Error("Failed to update wishlist",
			zap.String("user_id", profile.UserID),
			zap.Error(err))
		return err
	}
	return nil
}

// RemoveFromWishlist is idempotent: removing an absent product is a
// no-op.
func (s *UserService) RemoveFromWishlist(ctx context.Context, identity domain.Identity, productID string) error {
	profile, err := s.GetProfile(ctx, identity)
	if err != nil {
		return err
	}

	if !profile.InWishlist(productID) {
		return nil
	}

	kept := profile.Wishlist[:0]
	for _, id := range profile.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	profile.Wishlist = kept

	if err := s.users.PutProfile(ctx, profile); err != nil {
		s.logger.Error("Failed to update wishlist",
			zap.String("user_id", profile.UserID),
			zap.Error(err))
		return err
	}
	return nil
}
