package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/okarpenko/podhaven/internal/auth"
	"github.com/okarpenko/podhaven/internal/database/users"
	"github.com/okarpenko/podhaven/internal/entities"
)

// UserStore defines database operations for profile management.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	Update(user *entities.User) error
}

// PasswordChanger verifies and updates a user's password.
type PasswordChanger interface {
	ChangePassword(userID uint, currentPassword, newPassword string) error
}

type ProfileController struct {
	store     UserStore
	passwords PasswordChanger
}

func NewProfileController(store UserStore, passwords PasswordChanger) *ProfileController {
	return &ProfileController{store: store, passwords: passwords}
}

// GetProfile returns the caller's profile (password hash excluded by the
// entity's JSON tags).
// GET /api/users/profile
func (pc *ProfileController) GetProfile(c *gin.Context) {
	user, err := pc.store.GetByID(GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "user not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get profile")
		return
	}

	respondData(c, user)
}

type updateProfileRequest struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

// UpdateProfile updates name, email and profile picture URL.
// PUT /api/users/profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	user, err := pc.store.GetByID(GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "user not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "update profile")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := pc.store.GetByEmail(req.Email); err == nil {
			respondBadRequest(c, "email already in use")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondInternalError(c, err, "update profile")
			return
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	// An explicit empty string clears the picture; an absent field keeps it.
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = *req.ProfilePictureURL
	}

	if err := pc.store.Update(user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			respondBadRequest(c, "email already in use")
			return
		}
		respondInternalError(c, err, "update profile")
		return
	}

	respondData(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword updates the caller's password after verifying the current
// one.
// PUT /api/users/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondBadRequest(c, "please provide current and new password")
		return
	}

	err := pc.passwords.ChangePassword(GetUserID(c), req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		respondMessage(c, "password updated successfully")
	case errors.Is(err, auth.ErrInvalidPassword):
		respondUnauthorized(c, "incorrect current password")
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "change password")
	}
}
