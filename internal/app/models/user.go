package models

import (
	"time"
)

// Role is the user's authorization role
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User defines the user model based on the 'users' table
type User struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	FullName       string    `json:"fullName" db:"full_name" example:"דנה כהן"`
	Email          string    `json:"email" db:"email" example:"dana@example.com"`
	Password       string    `json:"-" db:"password"`
	Role           Role      `json:"role" db:"role" example:"USER"`
	EmailVerified  bool      `json:"emailVerified" db:"email_verified"`
	ProfilePicture *string   `json:"profilePicture,omitempty" db:"profile_picture"`
	Bio            *string   `json:"bio,omitempty" db:"bio"`
	Institution    *string   `json:"institution,omitempty" db:"institution" example:"האוניברסיטה העברית"`
	FieldOfStudy   *string   `json:"fieldOfStudy,omitempty" db:"field_of_study"`
	Location       *string   `json:"location,omitempty" db:"location"`
	Website        *string   `json:"website,omitempty" db:"website"`
	Interests      []string  `json:"interests" db:"interests"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// InstitutionName returns the institution or "" when unset
func (u *User) InstitutionName() string {
	if u.Institution == nil {
		return ""
	}
	return *u.Institution
}

// UserRef is the compact author/uploader projection embedded in content
type UserRef struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"fullName"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// UserCounts aggregates a user's contributions
type UserCounts struct {
	Summaries     int64 `json:"summaries"`
	ForumPosts    int64 `json:"forumPosts"`
	Comments      int64 `json:"comments"`
	RatingsGiven  int64 `json:"ratings"`
	Tools         int64 `json:"tools"`
	FavoritesKept int64 `json:"favorites"`
}

// ProfileUpdate holds the editable profile fields; nil means unchanged
type ProfileUpdate struct {
	FullName     *string
	Bio          *string
	Institution  *string
	FieldOfStudy *string
	Location     *string
	Website      *string
	Interests    []string
}
