package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/api/middleware"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/service/reservation"
	"github.com/sirupsen/logrus"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
	log     *logrus.Logger
}

type createReservationRequest struct {
	TripID        int64  `json:"trajet_id"`
	SeatNumber    int    `json:"siege_numero"`
	PaymentMethod string `json:"moyen_paiement"`
}

type reservationResponse struct {
	ID         int64   `json:"id"`
	TripID     int64   `json:"trajet_id"`
	SeatNumber int     `json:"siege_numero"`
	Code       string  `json:"code"`
	Status     string  `json:"statut"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	TicketURL  *string `json:"ticket_url,omitempty"`
}

func NewReservationHandler(service reservation.ReservationUseCase, log *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, log: log}
}

// Register mounts the authenticated reservation routes; RegisterPublic
// mounts the code lookup used on the confirmation page.
func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.PUT("/:id/confirm", h.confirm)
	router.DELETE("/:id", h.cancel)
	router.GET("/:id/ticket", h.ticket)
}

func (h *ReservationHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("/reservations/code/:code", h.getByCode)
}

func (h *ReservationHandler) create(c *gin.Context) {
	userID, ok := middleware.AuthUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentification requise")
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "corps de requete invalide")
		return
	}

	result, err := h.service.Create(c.Request.Context(), reservation.CreateInput{
		UserID:        userID,
		UserEmail:     middleware.AuthEmail(c),
		TripID:        req.TripID,
		SeatNumber:    req.SeatNumber,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var vErr *reservation.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "donnees de reservation invalides", "errors": vErr.Fields})
		case errors.Is(err, reservation.ErrTripNotFound):
			fail(c, http.StatusNotFound, "trajet introuvable")
		case errors.Is(err, reservation.ErrSeatTaken):
			fail(c, http.StatusBadRequest, "ce siege est deja reserve")
		default:
			h.log.WithError(err).Error("reservation create failed")
			serverError(c)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"reservation_id": result.ReservationID,
		"code":           result.Code,
		"data":           result.Summary,
	})
}

func (h *ReservationHandler) list(c *gin.Context) {
	userID, _ := middleware.AuthUserID(c)
	found, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("reservation list failed")
		serverError(c)
		return
	}
	data := make([]reservationResponse, 0, len(found))
	for i := range found {
		data = append(data, toReservationResponse(&found[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

func (h *ReservationHandler) getByCode(c *gin.Context) {
	detail, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			fail(c, http.StatusNotFound, "reservation introuvable")
			return
		}
		h.log.WithError(err).Error("reservation code lookup failed")
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "code": detail.Reservation.Code, "data": detail.Summary})
}

func (h *ReservationHandler) confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *ReservationHandler) transition(c *gin.Context, op func(ctx context.Context, id, userID int64) (*domain.Reservation, error)) {
	userID, _ := middleware.AuthUserID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "identifiant invalide")
		return
	}

	updated, err := op(c.Request.Context(), id, userID)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toReservationResponse(updated)})
}

func (h *ReservationHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrReservationNotFound):
		fail(c, http.StatusNotFound, "reservation introuvable")
	case errors.Is(err, reservation.ErrForbidden):
		fail(c, http.StatusForbidden, "cette reservation ne vous appartient pas")
	case errors.Is(err, reservation.ErrNotPending):
		fail(c, http.StatusBadRequest, "la reservation n'est plus en attente")
	default:
		h.log.WithError(err).Error("reservation transition failed")
		serverError(c)
	}
}

func (h *ReservationHandler) ticket(c *gin.Context) {
	userID, _ := middleware.AuthUserID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "identifiant invalide")
		return
	}

	pdf, err := h.service.Ticket(c.Request.Context(), id, userID)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="billet.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:         r.ID,
		TripID:     r.TripID,
		SeatNumber: r.SeatNumber,
		Code:       r.Code,
		Status:     string(r.Status),
		TicketURL:  r.TicketURL,
	}
	if r.ExpiresAt != nil {
		s := r.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &s
	}
	return resp
}
