package service

import (
	"context"
	"testing"
	"time"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "0123456789abcdef0123456789abcdef",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 14 * 24 * time.Hour,
		},
	}
}

func newAuthService(t *testing.T) (AuthService, *mockUserRepository) {
	t.Helper()
	userRepo := new(mockUserRepository)
	svc, err := NewAuthService(userRepo, authTestConfig())
	require.NoError(t, err)
	return svc, userRepo
}

func TestNewAuthService_RejectsShortSecret(t *testing.T) {
	cfg := authTestConfig()
	cfg.JWT.SecretKey = "too-short"

	_, err := NewAuthService(new(mockUserRepository), cfg)
	assert.ErrorContains(t, err, "at least 32 bytes")
}

func TestCreateAndValidateJWT(t *testing.T) {
	svc, _ := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0"}

	token, err := svc.CreateJWT(context.Background(), user, time.Hour, TokenTypeAccess)
	require.NoError(t, err)

	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestValidateJWT_TamperedToken(t *testing.T) {
	svc, _ := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0"}

	token, err := svc.CreateJWT(context.Background(), user, time.Hour, TokenTypeAccess)
	require.NoError(t, err)

	_, err = svc.ValidateJWT(context.Background(), token+"x")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateJWT_ExpiredToken(t *testing.T) {
	svc, _ := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0"}

	token, err := svc.CreateJWT(context.Background(), user, -time.Minute, TokenTypeAccess)
	require.NoError(t, err)

	_, err = svc.ValidateJWT(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestRefreshToken(t *testing.T) {
	svc, userRepo := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0", Email: "dev@example.com"}
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	refreshToken, err := svc.CreateJWT(context.Background(), user, time.Hour, TokenTypeRefresh)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(context.Background(), refreshToken)
	require.NoError(t, err)

	accessClaims, err := svc.ValidateJWT(context.Background(), newAccess)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, accessClaims.TokenType)

	refreshClaims, err := svc.ValidateJWT(context.Background(), newRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _ := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0"}

	accessToken, err := svc.CreateJWT(context.Background(), user, time.Hour, TokenTypeAccess)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(context.Background(), accessToken)
	assert.ErrorContains(t, err, "not a refresh token")
}

func TestRefreshToken_UnknownUser(t *testing.T) {
	svc, userRepo := newAuthService(t)
	user := &domain.User{ID: "01HQZXY8K2M3N4P5Q6R7S8T9V0"}
	userRepo.On("GetByID", mock.Anything, user.ID).Return(nil, nil)

	refreshToken, err := svc.CreateJWT(context.Background(), user, time.Hour, TokenTypeRefresh)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(context.Background(), refreshToken)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)
}

func TestEncryptDecryptToken(t *testing.T) {
	svc, _ := newAuthService(t)

	encrypted, err := svc.EncryptToken("google-refresh-token")
	require.NoError(t, err)
	assert.NotEqual(t, "google-refresh-token", encrypted)

	decrypted, err := svc.DecryptToken(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "google-refresh-token", decrypted)
}

func TestEncryptToken_EmptyPassesThrough(t *testing.T) {
	svc, _ := newAuthService(t)

	encrypted, err := svc.EncryptToken("")
	require.NoError(t, err)
	assert.Empty(t, encrypted)
}

func TestDecryptToken_Garbage(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.DecryptToken("not-base64!!!")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = svc.DecryptToken("YWJj") // valid base64, too short for a nonce
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestGetGoogleLoginURL(t *testing.T) {
	svc, _ := newAuthService(t)

	url := svc.GetGoogleLoginURL("state-token")
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "state=state-token")
	assert.Contains(t, url, "access_type=offline")
}
