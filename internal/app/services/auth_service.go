package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/auth"
	"github.com/studyhub-il/studyhub/internal/pkg/email"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
)

// Lifetimes of mailed tokens
const (
	passwordResetTokenTTL     = time.Hour
	emailVerificationTokenTTL = 24 * time.Hour
)

// AuthService handles registration, sessions and the signed-in user's account
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, actor *appauth.Actor, refreshToken string) error
	Me(ctx context.Context, actor *appauth.Actor) (*dto.MeResponse, error)
	UpdateProfile(ctx context.Context, actor *appauth.Actor, req dto.UpdateProfileRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, actor *appauth.Actor, file *multipart.FileHeader) (*models.User, error)
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, token string) error
}

type authServiceImpl struct {
	users      UserStore
	tokens     TokenStore
	jwtService *auth.JWTService
	revoker    TokenRevoker
	mailer     email.EmailService
	files      FileStore
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService. revoker may be nil, in which
// case logout only revokes the refresh token.
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	jwtService *auth.JWTService,
	revoker TokenRevoker,
	mailer email.EmailService,
	files FileStore,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		revoker:    revoker,
		mailer:     mailer,
		files:      files,
		logger:     logger,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Register creates a user and signs them in
func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       normalizeEmail(req.Email),
		Password:    hash,
		Role:        models.RoleUser,
		Institution: req.Institution,
		Interests:   []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("User registered")

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	verifyToken, err := s.createOneTimeToken(ctx, user.ID, models.TokenEmailVerification, emailVerificationTokenTTL)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to create email verification token")
	}
	go s.sendRegistrationMails(user.Email, user.FullName, verifyToken)

	return resp, nil
}

func (s *authServiceImpl) sendRegistrationMails(to, name, verifyToken string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendWelcomeEmail(to, name); err != nil {
		s.logger.Warn().Err(err).Str("email", to).Msg("Failed to send welcome email")
	}
	if verifyToken == "" {
		return
	}
	if err := s.mailer.SendVerificationEmail(to, name, verifyToken); err != nil {
		s.logger.Warn().Err(err).Str("email", to).Msg("Failed to send verification email")
	}
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token and returns a new token pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if stored.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes the refresh token, or all of the user's refresh tokens when
// none is given, and blacklists the access token until it expires.
func (s *authServiceImpl) Logout(ctx context.Context, actor *appauth.Actor, refreshToken string) error {
	if refreshToken != "" {
		if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	} else if err := s.tokens.RevokeAllForUser(ctx, actor.UserID); err != nil {
		return err
	}

	if s.revoker != nil && actor.TokenID != "" && actor.TokenTTL > 0 {
		if err := s.revoker.BlacklistToken(ctx, actor.TokenID, actor.TokenTTL); err != nil {
			s.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Failed to blacklist access token")
		}
	}
	s.logger.Info().Int64("userID", actor.UserID).Msg("User logged out")
	return nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CreateRefreshToken(ctx, pair.RefreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:            pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             user,
	}, nil
}

// Me returns the signed-in user with contribution counts
func (s *authServiceImpl) Me(ctx context.Context, actor *appauth.Actor) (*dto.MeResponse, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.Counts(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{User: user, Counts: counts}, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, actor *appauth.Actor, req dto.UpdateProfileRequest) (*models.User, error) {
	upd := req.ToModel()
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, apperrors.NewValidationError("fullName", "השם המלא לא יכול להיות ריק")
		}
		upd.FullName = &name
	}
	return s.users.UpdateProfile(ctx, actor.UserID, upd)
}

// UpdateAvatar stores a new profile picture and removes the previous one
// when it lives in this storage.
func (s *authServiceImpl) UpdateAvatar(ctx context.Context, actor *appauth.Actor, file *multipart.FileHeader) (*models.User, error) {
	if err := filestorage.ImageRule.Validate(file); err != nil {
		return nil, err
	}
	current, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, file, "avatars", "avatar")
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.users.UpdateProfilePicture(ctx, actor.UserID, stored.URL); err != nil {
		if delErr := s.files.Delete(ctx, stored.Key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", stored.Key).Msg("Failed to remove orphaned avatar")
		}
		return nil, err
	}

	if current.ProfilePicture != nil {
		if key, ok := s.keyFromURL(*current.ProfilePicture); ok {
			if err := s.files.Delete(ctx, key); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove previous avatar")
			}
		}
	}

	current.ProfilePicture = &stored.URL
	return current, nil
}

// keyFromURL recovers the storage key of an avatar URL issued by this storage
func (s *authServiceImpl) keyFromURL(url string) (string, bool) {
	const folder = "avatars/"
	i := strings.LastIndex(url, folder)
	if i < 0 {
		return "", false
	}
	key := url[i:]
	if s.files.URL(key) != url {
		return "", false
	}
	return key, true
}

// ForgotPassword mails a reset link. Unknown addresses get the same
// success response as registered ones.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := s.createOneTimeToken(ctx, user.ID, models.TokenPasswordReset, passwordResetTokenTTL)
	if err != nil {
		return err
	}
	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName, token); err != nil {
			s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
		}
	}
	return nil
}

// ResetPassword consumes a reset token and signs the user out everywhere
func (s *authServiceImpl) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	t, err := s.consumeOneTimeToken(ctx, req.Token, models.TokenPasswordReset)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) || errors.Is(err, apperrors.ErrTokenExpired) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, t.UserID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, t.UserID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", t.UserID).Msg("Failed to revoke sessions after password reset")
	}
	s.logger.Info().Int64("userID", t.UserID).Msg("Password reset")
	return nil
}

func (s *authServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.consumeOneTimeToken(ctx, token, models.TokenEmailVerification)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) || errors.Is(err, apperrors.ErrTokenExpired) {
			return apperrors.ErrInvalidEmailToken
		}
		return err
	}

	user, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}
	return s.users.SetEmailVerified(ctx, t.UserID)
}

func (s *authServiceImpl) createOneTimeToken(ctx context.Context, userID int64, kind models.OneTimeTokenKind, ttl time.Duration) (string, error) {
	t := &models.OneTimeToken{
		UserID:    userID,
		Kind:      kind,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.tokens.CreateOneTimeToken(ctx, t); err != nil {
		return "", err
	}
	return t.Token, nil
}

func (s *authServiceImpl) consumeOneTimeToken(ctx context.Context, token string, kind models.OneTimeTokenKind) (*models.OneTimeToken, error) {
	t, err := s.tokens.GetOneTimeToken(ctx, token, kind)
	if err != nil {
		return nil, err
	}
	if time.Now().After(t.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}
	if err := s.tokens.MarkOneTimeTokenUsed(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}
