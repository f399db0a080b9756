package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/oauth"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	googleOAuth  *oauth.GoogleOAuthService
	accessExpiry time.Duration
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. googleOAuth may be nil.
func NewAuthHandler(authService *service.AuthService, googleOAuth *oauth.GoogleOAuthService, accessExpiry time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		googleOAuth:  googleOAuth,
		accessExpiry: accessExpiry,
		logger:       logger,
	}
}

func (h *AuthHandler) tokenResponse(out *service.LoginOutput) *response.TokenResponse {
	return &response.TokenResponse{
		User:         response.NewUserResponse(out.User),
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.accessExpiry.Seconds()),
	}
}

// Login handles user login
// @Summary Login
// @Description Authenticate an approved user by username or e-mail and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Identifier() == "" {
		response.BadRequest(c, "Username or email and password are required")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Identifier: req.Identifier(),
		Password:   req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", h.tokenResponse(output))
}

// Register handles user registration
// @Summary Register
// @Description Create a staff account that waits for admin approval
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful. An administrator must approve the account before you can sign in.", gin.H{
		"user": response.NewUserResponse(user),
	})
}

// RefreshToken handles token refresh
// @Summary Refresh Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", h.tokenResponse(output))
}

// GetProfile returns the signed-in user
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", gin.H{"user": response.NewUserResponse(user)})
}

// GoogleAuth redirects to the Google consent page
// @Summary Google sign-in
// @Tags auth
// @Success 307
// @Failure 503 {object} response.APIResponse
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	if h.googleOAuth == nil || !h.googleOAuth.IsConfigured() {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error())
		return
	}

	state, err := h.googleOAuth.NewState(time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.GetAuthURL(state))
}

// GoogleCallback completes the Google round trip and hands tokens to the frontend.
// Failures redirect to the frontend error page with a short reason code.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.googleOAuth == nil || !h.googleOAuth.IsConfigured() {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error())
		return
	}

	fail := func(reason string, err error) {
		h.logger.Warn("google sign-in failed", zap.String("reason", reason), zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.ErrorRedirect(reason))
	}

	if e := c.Query("error"); e != "" {
		fail("access_denied", errors.New(e))
		return
	}
	if err := h.googleOAuth.VerifyState(c.Query("state")); err != nil {
		fail("invalid_state", err)
		return
	}

	ctx := c.Request.Context()
	token, err := h.googleOAuth.ExchangeCode(ctx, c.Query("code"))
	if err != nil {
		fail("exchange_failed", err)
		return
	}
	info, err := h.googleOAuth.GetUserInfo(ctx, token)
	if err != nil {
		fail("userinfo_failed", err)
		return
	}

	output, err := h.authService.GoogleSignIn(ctx, info)
	if err != nil {
		if errors.Is(err, apperror.ErrAccountPending) {
			fail("pending_approval", err)
			return
		}
		fail("signin_failed", err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.SuccessRedirect(output.AccessToken, output.RefreshToken))
}
