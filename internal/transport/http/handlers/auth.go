package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/infra/logger"
	"github.com/Rista10/event-planner-application/internal/transport/http/middleware"
	"github.com/Rista10/event-planner-application/internal/usecase"
)

// AuthUseCase is the account lifecycle consumed by AuthHandler. *usecase.AuthService implements it.
type AuthUseCase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, userID, otp string) (*usecase.AuthResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*usecase.AuthResult, error)
	Logout(ctx context.Context) error
	EnableTwoFactor(ctx context.Context, userID string, enable bool) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerificationEmail(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

var _ AuthUseCase = (*usecase.AuthService)(nil)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth    AuthUseCase
	errors  *ErrorResponder
	cookies CookieConfig
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth AuthUseCase, responder *ErrorResponder, cookies CookieConfig) *AuthHandler {
	if responder == nil {
		responder = NewErrorResponder(nil, false)
	}
	return &AuthHandler{auth: auth, errors: responder, cookies: cookies}
}

// AuthRouteOptions selects the middleware and optional routes bound by RegisterRoutes.
type AuthRouteOptions struct {
	// RateLimit guards the credential and email-sending endpoints.
	RateLimit gin.HandlerFunc
	// RequireAuth guards endpoints that act on the signed-in user.
	RequireAuth gin.HandlerFunc
	// TwoFactor registers /verify-2fa and /2fa.
	TwoFactor bool
}

// RegisterRoutes binds the auth routes on r.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, opts AuthRouteOptions) {
	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if opts.RateLimit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{opts.RateLimit, handler}
	}

	r.POST("/signup", limited(h.signup)...)
	r.POST("/login", limited(h.login)...)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", h.logout)
	r.POST("/verify-email", h.verifyEmail)
	r.POST("/resend-verification", limited(h.resendVerification)...)
	r.POST("/forgot-password", limited(h.forgotPassword)...)
	r.POST("/reset-password", limited(h.resetPassword)...)

	if opts.TwoFactor {
		r.POST("/verify-2fa", limited(h.verifyTwoFactor)...)
		if opts.RequireAuth != nil {
			r.POST("/2fa", opts.RequireAuth, h.toggleTwoFactor)
		}
	}
}

// signup godoc
// @Summary Register a new account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} Envelope
// @Failure 409 {object} Envelope
// @Router /api/auth/signup [post]
func (h *AuthHandler) signup(c *gin.Context) {
	var req SignupRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	h.cookies.set(c, res.RefreshToken)
	respondOK(c, http.StatusCreated, newAuthResponse(res))
}

// login godoc
// @Summary Log in with email and password
// @Description Returns a session, or a two-factor marker when the account has 2FA enabled.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} Envelope
// @Router /api/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	if res.RequiresTwoFactor {
		respondOK(c, http.StatusOK, TwoFactorRequiredResponse{RequiresTwoFactor: true, UserID: res.UserID})
		return
	}

	h.cookies.set(c, res.Auth.RefreshToken)
	respondOK(c, http.StatusOK, newAuthResponse(res.Auth))
}

// verifyTwoFactor godoc
// @Summary Complete a two-factor login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body VerifyTwoFactorRequest true "User id and emailed code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} Envelope
// @Router /api/auth/verify-2fa [post]
func (h *AuthHandler) verifyTwoFactor(c *gin.Context) {
	var req VerifyTwoFactorRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	res, err := h.auth.VerifyTwoFactor(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	h.cookies.set(c, res.RefreshToken)
	respondOK(c, http.StatusOK, newAuthResponse(res))
}

// refresh godoc
// @Summary Refresh the session
// @Description Issues a new access token and rotates the refresh cookie.
// @Tags Authentication
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 401 {object} Envelope
// @Router /api/auth/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	token, err := c.Cookie(RefreshCookieName)
	if err != nil || token == "" {
		logger.WithContext(c.Request.Context(), h.errors.logger).Warn("request rejected",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", "NO_REFRESH_TOKEN"),
		)
		respondError(c, http.StatusUnauthorized, "NO_REFRESH_TOKEN", "Refresh token not found")
		return
	}

	res, err := h.auth.RefreshAccessToken(c.Request.Context(), token)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	h.cookies.set(c, res.RefreshToken)
	respondOK(c, http.StatusOK, newAuthResponse(res))
}

// logout godoc
// @Summary Log out
// @Description Clears the refresh cookie. Issued tokens stay valid until they expire.
// @Tags Authentication
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	h.cookies.clear(c)
	respondOK(c, http.StatusOK, MessageResponse{Message: usecase.MessageLoggedOut})
}

// toggleTwoFactor godoc
// @Summary Enable or disable two-factor login
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ToggleTwoFactorRequest true "Desired state"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} Envelope
// @Router /api/auth/2fa [post]
func (h *AuthHandler) toggleTwoFactor(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req ToggleTwoFactorRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	message, err := h.auth.EnableTwoFactor(c.Request.Context(), userID, *req.Enable)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	respondOK(c, http.StatusOK, MessageResponse{Message: message})
}
