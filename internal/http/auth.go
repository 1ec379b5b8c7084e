package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/auth"
	"github.com/okarpenko/podhaven/internal/entities"
)

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Register(name, email, password string) (*entities.User, string, error)
	Login(email, password string) (*entities.User, string, error)
}

type AuthController struct {
	service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse bundles the token with a trimmed user view, mirroring what
// the SPA stores after login.
type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    gin.H  `json:"user"`
}

func newAuthResponse(user *entities.User, token string) authResponse {
	return authResponse{
		Success: true,
		Token:   token,
		User: gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	}
}

// Register creates a new account and returns a 30-day bearer token.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, token, err := ac.service.Register(req.Name, req.Email, req.Password)
	if err != nil {
		ac.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(user, token))
}

// Login exchanges credentials for a bearer token.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, token, err := ac.service.Login(req.Email, req.Password)
	if err != nil {
		ac.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(user, token))
}

func (ac *AuthController) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondUnauthorized(c, "invalid credentials")
	case errors.Is(err, auth.ErrUserExists):
		respondBadRequest(c, "user already exists")
	case errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordRequired),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "auth")
	}
}
