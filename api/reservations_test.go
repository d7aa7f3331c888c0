package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/api/middleware"
	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/service/reservation"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Create(ctx context.Context, input reservation.CreateInput) (*reservation.CreateResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.CreateResult), args.Error(1)
}

func (m *MockReservationUseCase) GetByCode(ctx context.Context, code string) (*reservation.Detail, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Detail), args.Error(1)
}

func (m *MockReservationUseCase) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Confirm(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Cancel(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Ticket(ctx context.Context, id, userID int64) ([]byte, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReservationUseCase) ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// fakeAuth stands in for the JWT middleware in handler tests.
func fakeAuth(userID int64, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthContext(c, userID, email)
		c.Next()
	}
}

func newReservationRouter(service *MockReservationUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	handler := NewReservationHandler(service, log)

	router := gin.New()
	handler.RegisterPublic(router.Group(""))
	authed := router.Group("/reservations", fakeAuth(7, "moussa@example.com"))
	handler.Register(authed)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReservationHandler_Create(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Create", mock.Anything, reservation.CreateInput{
		UserID:        7,
		UserEmail:     "moussa@example.com",
		TripID:        4,
		SeatNumber:    12,
		PaymentMethod: "mobile_money",
	}).Return(&reservation.CreateResult{
		ReservationID: 99,
		Code:          "TB-AAAA2222",
		Summary: reservation.Summary{
			Route: "Dakar - Saint-Louis", Date: "2026-09-03", Time: "08:30",
			SeatNumber: 12, PriceCents: 550000, Status: "pending",
		},
	}, nil).Once()

	w := doJSON(router, http.MethodPost, "/reservations", `{"trajet_id":4,"siege_numero":12,"moyen_paiement":"mobile_money"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success       bool                `json:"success"`
		ReservationID int64               `json:"reservation_id"`
		Code          string              `json:"code"`
		Data          reservation.Summary `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(99), resp.ReservationID)
	assert.Equal(t, "TB-AAAA2222", resp.Code)
	assert.Equal(t, "Dakar - Saint-Louis", resp.Data.Route)
	service.AssertExpectations(t)
}

func TestReservationHandler_Create_SeatTaken(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Create", mock.Anything, mock.Anything).Return(nil, reservation.ErrSeatTaken).Once()

	w := doJSON(router, http.MethodPost, "/reservations", `{"trajet_id":4,"siege_numero":12,"moyen_paiement":"carte"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "deja reserve")
}

func TestReservationHandler_Create_ValidationErrors(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Create", mock.Anything, mock.Anything).Return(nil, &reservation.ValidationError{
		Fields: []validate.FieldError{{Field: "siege_numero", Message: "siege invalide"}},
	}).Once()

	w := doJSON(router, http.MethodPost, "/reservations", `{"trajet_id":4,"siege_numero":0,"moyen_paiement":"carte"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "siege_numero")
}

func TestReservationHandler_Create_BadBody(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	w := doJSON(router, http.MethodPost, "/reservations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReservationHandler_GetByCode(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("GetByCode", mock.Anything, "TB-AAAA2222").Return(&reservation.Detail{
		Reservation: &domain.Reservation{ID: 99, Code: "TB-AAAA2222", Status: domain.ReservationStatusConfirmed},
		Summary:     reservation.Summary{Route: "Dakar - Saint-Louis", Status: "confirmed"},
	}, nil).Once()

	w := doJSON(router, http.MethodGet, "/reservations/code/TB-AAAA2222", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TB-AAAA2222")
}

func TestReservationHandler_GetByCode_NotFound(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("GetByCode", mock.Anything, "TB-NOPE0000").Return(nil, reservation.ErrReservationNotFound).Once()

	w := doJSON(router, http.MethodGet, "/reservations/code/TB-NOPE0000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationHandler_Confirm(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	expires := time.Now().Add(5 * time.Minute)
	service.On("Confirm", mock.Anything, int64(99), int64(7)).Return(&domain.Reservation{
		ID: 99, TripID: 4, SeatNumber: 12, Code: "TB-AAAA2222",
		Status: domain.ReservationStatusConfirmed, ExpiresAt: &expires,
	}, nil).Once()

	w := doJSON(router, http.MethodPut, "/reservations/99/confirm", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"statut":"confirmed"`)
}

func TestReservationHandler_Confirm_NotPending(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Confirm", mock.Anything, int64(99), int64(7)).Return(nil, reservation.ErrNotPending).Once()

	w := doJSON(router, http.MethodPut, "/reservations/99/confirm", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_Cancel_Forbidden(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Cancel", mock.Anything, int64(99), int64(7)).Return(nil, reservation.ErrForbidden).Once()

	w := doJSON(router, http.MethodDelete, "/reservations/99", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReservationHandler_Ticket(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("Ticket", mock.Anything, int64(99), int64(7)).Return([]byte("%PDF-fake"), nil).Once()

	w := doJSON(router, http.MethodGet, "/reservations/99/ticket", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "billet.pdf")
}

func TestReservationHandler_List(t *testing.T) {
	service := &MockReservationUseCase{}
	router := newReservationRouter(service)

	service.On("ListByUser", mock.Anything, int64(7)).Return([]domain.Reservation{
		{ID: 99, TripID: 4, SeatNumber: 12, Code: "TB-AAAA2222", Status: domain.ReservationStatusPending},
	}, nil).Once()

	w := doJSON(router, http.MethodGet, "/reservations", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
