package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/service/auth"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	service *auth.Service
	log     *logrus.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"nom"`
	Email         string  `json:"email"`
	Phone         *string `json:"telephone,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	Status        string  `json:"statut"`
}

func NewAuthHandler(service *auth.Service, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req auth.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "corps de requete invalide")
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()
	user, sent, err := h.service.Signup(c.Request.Context(), req, &ip, &userAgent)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			fail(c, http.StatusBadRequest, "donnees d'inscription invalides")
		case errors.Is(err, auth.ErrEmailTaken):
			fail(c, http.StatusBadRequest, "un compte existe deja avec cet email")
		default:
			h.log.WithError(err).Error("signup failed")
			serverError(c)
		}
		return
	}

	resp := gin.H{
		"success": true,
		"message": "compte cree, verifiez votre boite email",
		"data":    toUserResponse(user),
	}
	if sent != nil && sent.DebugToken != "" {
		resp["debug_token"] = sent.DebugToken
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email et mot de passe obligatoires")
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "identifiants invalides")
			return
		}
		h.log.WithError(err).Error("login failed")
		serverError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "data": toUserResponse(user)})
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		EmailVerified: u.EmailVerified,
		Status:        string(u.Status),
	}
}
