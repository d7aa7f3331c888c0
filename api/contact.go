package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus"
)

type ContactHandler struct {
	repo      repository.ContactRepository
	validator *validate.Validator
	log       *logrus.Logger
}

type contactRequest struct {
	Name    string `json:"nom" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"sujet" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func NewContactHandler(repo repository.ContactRepository, validator *validate.Validator, log *logrus.Logger) *ContactHandler {
	return &ContactHandler{repo: repo, validator: validator, log: log}
}

func (h *ContactHandler) Register(router *gin.RouterGroup) {
	router.POST("/contact", h.create)
}

func (h *ContactHandler) create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "nom, email, sujet et message sont obligatoires")
		return
	}
	if !h.validator.Email(req.Email) {
		fail(c, http.StatusBadRequest, "adresse email invalide")
		return
	}
	if !validate.Name(req.Name) {
		fail(c, http.StatusBadRequest, "nom invalide")
		return
	}
	if len(req.Message) < 10 || len(req.Message) > 5000 {
		fail(c, http.StatusBadRequest, "le message doit contenir entre 10 et 5000 caracteres")
		return
	}

	msg := &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.repo.Create(c.Request.Context(), msg); err != nil {
		h.log.WithError(err).Error("contact message insert failed")
		serverError(c)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "message envoye"})
}
