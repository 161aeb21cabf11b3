package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
)

type authFixture struct {
	users   *mockUserStore
	tokens  *mockTokenStore
	revoker *mockRevoker
	jwt     *auth.JWTService
	svc     AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:   newMockUserStore(),
		tokens:  newMockTokenStore(),
		revoker: &mockRevoker{blacklisted: map[string]time.Duration{}},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "studyhub-test",
		}),
	}
	f.svc = NewAuthService(f.users, f.tokens, f.jwt, f.revoker, nil, nil, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		FullName: "דנה כהן",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	resp := f.register(t, "  Dana@Example.com ")
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEqual(t, "password123", f.users.users[resp.User.ID].Password)
	assert.NotNil(t, f.tokens.firstOneTimeToken(models.TokenEmailVerification))

	claims, err := f.jwt.ValidateAndExtractClaims(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = f.svc.Register(ctx, dto.RegisterRequest{FullName: "אחר", Email: "dana@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	login, err := f.svc.Login(ctx, dto.LoginRequest{Email: "DANA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "dana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	resp := f.register(t, "dana@example.com")

	rotated, err := f.svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.svc.RefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	f.tokens.refresh[rotated.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
	_, err = f.svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	resp := f.register(t, "dana@example.com")

	a := &appauth.Actor{UserID: resp.User.ID, TokenID: "jti-1", TokenTTL: 10 * time.Minute}
	require.NoError(t, f.svc.Logout(ctx, a, resp.RefreshToken))

	assert.Equal(t, 10*time.Minute, f.revoker.blacklisted["jti-1"])
	assert.True(t, f.tokens.refresh[resp.RefreshToken].IsRevoked)

	_, err := f.svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	resp := f.register(t, "dana@example.com")

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Nil(t, f.tokens.firstOneTimeToken(models.TokenPasswordReset))

	require.NoError(t, f.svc.ForgotPassword(ctx, "dana@example.com"))
	token := f.tokens.firstOneTimeToken(models.TokenPasswordReset)
	require.NotNil(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	require.NoError(t, f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token.Token, NewPassword: "newpass1"}))
	assert.Contains(t, f.tokens.revoked, resp.User.ID)

	err := f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token.Token, NewPassword: "again12"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "dana@example.com", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	resp := f.register(t, "dana@example.com")
	token := f.tokens.firstOneTimeToken(models.TokenEmailVerification)
	require.NotNil(t, token)

	require.NoError(t, f.svc.VerifyEmail(ctx, token.Token))
	assert.True(t, f.users.users[resp.User.ID].EmailVerified)

	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, token.Token), apperrors.ErrInvalidEmailToken)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	resp := f.register(t, "dana@example.com")
	a := actor(resp.User.ID)

	bio := "סטודנטית למדעי המחשב"
	user, err := f.svc.UpdateProfile(ctx, a, dto.UpdateProfileRequest{Bio: &bio, Interests: []string{"אלגוריתמים"}})
	require.NoError(t, err)
	assert.Equal(t, bio, *user.Bio)
	assert.Equal(t, []string{"אלגוריתמים"}, user.Interests)

	blank := "   "
	_, err = f.svc.UpdateProfile(ctx, a, dto.UpdateProfileRequest{FullName: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
