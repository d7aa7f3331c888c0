package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/trips"
	"github.com/sirupsen/logrus"
)

type TripHandler struct {
	service trips.TripUseCase
	log     *logrus.Logger
}

type tripResponse struct {
	ID            int64  `json:"id"`
	DepartureCity string `json:"ville_depart"`
	ArrivalCity   string `json:"ville_arrivee"`
	DepartureDate string `json:"date_depart"`
	DepartureTime string `json:"heure_depart"`
	BusID         int64  `json:"bus_id"`
	SeatsTotal    int    `json:"places_total"`
	PriceCents    int64  `json:"prix"`
}

func NewTripHandler(service trips.TripUseCase, log *logrus.Logger) *TripHandler {
	return &TripHandler{service: service, log: log}
}

func (h *TripHandler) Register(router *gin.RouterGroup) {
	router.GET("/trajets/search", h.search)
	router.GET("/trajets/:id", h.get)
}

func (h *TripHandler) search(c *gin.Context) {
	from := c.Query("ville_depart")
	to := c.Query("ville_arrivee")
	dateStr := c.Query("date_depart")
	if from == "" || to == "" || dateStr == "" {
		fail(c, http.StatusBadRequest, "ville_depart, ville_arrivee et date_depart sont obligatoires")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		fail(c, http.StatusBadRequest, "date_depart invalide, format attendu AAAA-MM-JJ")
		return
	}

	found, err := h.service.Search(c.Request.Context(), from, to, date)
	if err != nil {
		h.log.WithError(err).Error("trip search failed")
		serverError(c)
		return
	}

	data := make([]tripResponse, 0, len(found))
	for i := range found {
		data = append(data, toTripResponse(&found[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

func (h *TripHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "identifiant de trajet invalide")
		return
	}

	trip, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			fail(c, http.StatusNotFound, "trajet introuvable")
			return
		}
		h.log.WithError(err).Error("trip lookup failed")
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toTripResponse(trip)})
}

func toTripResponse(t *domain.Trip) tripResponse {
	return tripResponse{
		ID:            t.ID,
		DepartureCity: t.DepartureCity,
		ArrivalCity:   t.ArrivalCity,
		DepartureDate: t.DepartureDate.Format("2006-01-02"),
		DepartureTime: t.DepartureTime,
		BusID:         t.BusID,
		SeatsTotal:    t.SeatsTotal,
		PriceCents:    t.PriceCents,
	}
}
