// Package users provides a client for the platform's user account API.
//
// This package enables folio to:
// - Sign up with email, nickname and password
// - Check whether an email is still available
// - Read, update and delete a user profile
// - Change a user's password
package users

import "io"

// User is a platform account as returned by the API.
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Introduction    string `json:"introduction,omitempty"`
}

// SignupForm is what a user types into the signup form.
type SignupForm struct {
	Email           string `json:"email" validate:"required,signup_email"`
	Nickname        string `json:"nickname" validate:"required,nickname"`
	Password        string `json:"password" validate:"required,signup_password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UpdateRequest changes a profile. Empty fields are left as they are.
type UpdateRequest struct {
	Nickname     string
	ProfileImage io.Reader
	ImageName    string
}

// PasswordChange replaces the current password with a new one.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
