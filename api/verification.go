package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/internal/service/verification"
	"github.com/sirupsen/logrus"
)

// VerificationUseCase is the slice of the verification service the
// HTTP layer consumes.
type VerificationUseCase interface {
	VerifyToken(ctx context.Context, rawToken string, userID *int64) (verification.VerifyStatus, error)
	ResendVerification(ctx context.Context, email string, ip, userAgent *string) (*verification.ResendResult, error)
}

type VerificationHandler struct {
	service     VerificationUseCase
	frontendURL string
	log         *logrus.Logger
}

func NewVerificationHandler(service VerificationUseCase, frontendURL string, log *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, frontendURL: frontendURL, log: log}
}

// RegisterPublic mounts the link target; Register mounts the
// authenticated resend endpoint.
func (h *VerificationHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("/email/verify-email/:token", h.verify)
}

func (h *VerificationHandler) Register(router *gin.RouterGroup) {
	router.POST("/email/resend-verification", h.resend)
}

func (h *VerificationHandler) verify(c *gin.Context) {
	status, err := h.service.VerifyToken(c.Request.Context(), c.Param("token"), nil)
	if err != nil {
		h.log.WithError(err).Error("email verification failed")
		serverError(c)
		return
	}

	switch status {
	case verification.StatusVerified:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"status":   status,
			"message":  "adresse email confirmee",
			"redirect": h.frontendURL + "/connexion?verified=1",
		})
	case verification.StatusAlreadyVerified:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"status":   status,
			"message":  "adresse email deja confirmee",
			"redirect": h.frontendURL + "/connexion",
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"status":  status,
			"message": "lien de confirmation invalide ou expire",
		})
	}
}

type resendRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *VerificationHandler) resend(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email obligatoire")
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()
	result, err := h.service.ResendVerification(c.Request.Context(), req.Email, &ip, &userAgent)
	if err != nil {
		if errors.Is(err, verification.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"code":    "RATE_LIMITED",
				"message": "trop de demandes, reessayez dans une heure",
			})
			return
		}
		h.log.WithError(err).Error("verification resend failed")
		serverError(c)
		return
	}

	resp := gin.H{"success": true, "message": "si un compte existe, un email de confirmation a ete envoye"}
	if result.Security {
		resp["security"] = true
	}
	if len(result.Methods) > 0 {
		resp["methods"] = result.Methods
	}
	c.JSON(http.StatusOK, resp)
}
