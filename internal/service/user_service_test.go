package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/pkg/auth"
)

func newUserService(users *fakeUserStore) (*UserService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(users, tokens, zap.NewNop()), tokens
}

func TestSignupCreatesProfileAndToken(t *testing.T) {
	users := newFakeUserStore()
	svc, tokens := newUserService(users)

	resp, err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:    "bob@example.com",
		Password: "correct-horse",
		Name:     "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)

	identity, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User, identity)

	profile, err := users.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", profile.PasswordHash, "password must be stored hashed")
	assert.Empty(t, profile.Wishlist)
	assert.Empty(t, profile.Orders)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newUserService(users)

	req := domain.SignupRequest{Email: "bob@example.com", Password: "correct-horse", Name: "Bob"}
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newUserService(users)

	signup, err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:    "bob@example.com",
		Password: "correct-horse",
		Name:     "Bob",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "bob@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, resp.User.ID)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "bob@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown accounts look identical to bad passwords
	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	svc, _ := newUserService(newFakeUserStore(aliceProfile()))

	profile, err := svc.GetProfile(context.Background(), alice())
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)

	_, err = svc.GetProfile(context.Background(), domain.Identity{ID: "ghost"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.GetProfile(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWishlistAddIsSetInsert(t *testing.T) {
	users := newFakeUserStore(aliceProfile())
	svc, _ := newUserService(users)

	require.NoError(t, svc.AddToWishlist(context.Background(), alice(), "3"))
	require.NoError(t, svc.AddToWishlist(context.Background(), alice(), "3"))
	require.NoError(t, svc.AddToWishlist(context.Background(), alice(), "5"))

	profile, err := users.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "5"}, profile.Wishlist)
}

func TestWishlistRemoveIsIdempotent(t *testing.T) {
	users := newFakeUserStore(aliceProfile())
	svc, _ := newUserService(users)

	require.NoError(t, svc.AddToWishlist(context.Background(), alice(), "3"))
	require.NoError(t, svc.RemoveFromWishlist(context.Background(), alice(), "3"))
	require.NoError(t, svc.RemoveFromWishlist(context.Background(), alice(), "3"))
	require.NoError(t, svc.RemoveFromWishlist(context.Background(), alice(), "never-added"))

	profile, err := users.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, profile.Wishlist)
}
