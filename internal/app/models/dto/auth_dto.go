package dto

import "github.com/studyhub-il/studyhub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"dana@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RegisterRequest represents a new account
type RegisterRequest struct {
	FullName    string  `json:"fullName" binding:"required,min=2,max=120" example:"דנה כהן"`
	Email       string  `json:"email" binding:"required,email" example:"dana@example.com"`
	Password    string  `json:"password" binding:"required,min=6" example:"password123"`
	Institution *string `json:"institution" binding:"omitempty,max=255"`
}

// RefreshTokenRequest carries the opaque refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// VerifyEmailRequest confirms an email address
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	Token            string       `json:"token"`
	RefreshToken     string       `json:"refreshToken"`
	TokenType        string       `json:"tokenType" example:"Bearer"`
	ExpiresIn        int          `json:"expiresIn"`
	RefreshExpiresIn int          `json:"refreshExpiresIn"`
	User             *models.User `json:"user"`
}

// UpdateProfileRequest holds the editable profile fields; omitted fields are unchanged
type UpdateProfileRequest struct {
	FullName     *string  `json:"fullName" binding:"omitempty,min=2,max=120"`
	Bio          *string  `json:"bio" binding:"omitempty,max=1000"`
	Institution  *string  `json:"institution" binding:"omitempty,max=255"`
	FieldOfStudy *string  `json:"fieldOfStudy" binding:"omitempty,max=255"`
	Location     *string  `json:"location" binding:"omitempty,max=255"`
	Website      *string  `json:"website" binding:"omitempty,max=500"`
	Interests    []string `json:"interests" binding:"omitempty,max=20,dive,max=50"`
}

// ToModel converts the request into a models.ProfileUpdate
func (r UpdateProfileRequest) ToModel() models.ProfileUpdate {
	return models.ProfileUpdate{
		FullName:     r.FullName,
		Bio:          r.Bio,
		Institution:  r.Institution,
		FieldOfStudy: r.FieldOfStudy,
		Location:     r.Location,
		Website:      r.Website,
		Interests:    r.Interests,
	}
}

// MeResponse is the signed-in user with contribution counts
type MeResponse struct {
	*models.User
	Counts models.UserCounts `json:"_count"`
}

// Achievement is a badge earned from contribution counts
type Achievement struct {
	Key         string `json:"key" example:"first_summary"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// ProfileResponse is a user's public profile
type ProfileResponse struct {
	*models.User
	Counts        models.UserCounts `json:"_count"`
	AverageRating *float64          `json:"averageRating"`
	Achievements  []Achievement     `json:"achievements"`
}
