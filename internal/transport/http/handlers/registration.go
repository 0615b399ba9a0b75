package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// verifyEmail godoc
// @Summary Verify an email address
// @Description Redeems the token from the verification link.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Verification token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} Envelope
// @Router /api/auth/verify-email [post]
func (h *AuthHandler) verifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	message, err := h.auth.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	respondOK(c, http.StatusOK, MessageResponse{Message: message})
}

// resendVerification godoc
// @Summary Resend the verification email
// @Description Unknown addresses receive the same response as registered ones.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} Envelope
// @Router /api/auth/resend-verification [post]
func (h *AuthHandler) resendVerification(c *gin.Context) {
	var req EmailRequest
	if err := bindRequest(c, &req); err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	message, err := h.auth.ResendVerificationEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.errors.RespondWithMappedError(c, err)
		return
	}

	respondOK(c, http.StatusOK, MessageResponse{Message: message})
}
