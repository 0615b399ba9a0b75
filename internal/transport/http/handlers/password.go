package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// forgotPassword godoc
// @Summary Request a password reset link
// @Description The response is identical whether or not the address is registered.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} Envelope
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	message, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	respondOK(c, http.StatusOK, MessageResponse{Message: message})
}

// resetPassword godoc
// @Summary Reset the password
// @Description Redeems the token from the reset link and stores the new password.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} Envelope
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	message, err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	respondOK(c, http.StatusOK, MessageResponse{Message: message})
}
