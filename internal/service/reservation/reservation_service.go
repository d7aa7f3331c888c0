package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/kafka"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus"
)

var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrSeatTaken           = errors.New("seat already reserved")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrForbidden           = errors.New("reservation belongs to another user")
	ErrNotPending          = errors.New("reservation is not pending")
)

// ValidationError aggregates per-field failures from the composite
// validator so the handler can return them all at once.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reservation data (%d fields)", len(e.Fields))
}

type ReservationUseCase interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	GetByCode(ctx context.Context, code string) (*Detail, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	Confirm(ctx context.Context, id, userID int64) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, userID int64) (*domain.Reservation, error)
	Ticket(ctx context.Context, id, userID int64) ([]byte, error)
	ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error)
}

// Cache is the redis surface the service needs: the SetNX seat lock in
// front of the conditional insert.
type Cache interface {
	AcquireSeatLock(ctx context.Context, tripID int64, seat int, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, tripID int64, seat int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// TicketRenderer produces the PDF ticket for a confirmed reservation.
type TicketRenderer interface {
	Render(res *domain.Reservation, trip *domain.Trip, userName string) ([]byte, error)
}

type CreateInput struct {
	UserID        int64
	UserEmail     string
	TripID        int64  `json:"trajet_id"`
	SeatNumber    int    `json:"siege_numero"`
	PaymentMethod string `json:"moyen_paiement"`
}

// Summary is the denormalized view returned with a created or fetched
// reservation.
type Summary struct {
	Route      string `json:"route"`
	Date       string `json:"date"`
	Time       string `json:"heure"`
	SeatNumber int    `json:"siege_numero"`
	PriceCents int64  `json:"prix"`
	Status     string `json:"statut"`
}

type CreateResult struct {
	ReservationID int64
	Code          string
	Summary       Summary
}

type Detail struct {
	Reservation *domain.Reservation
	Summary     Summary
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	trips              repository.TripRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	tickets            TicketRenderer
	notificationsTopic string
	holdTTL            time.Duration
	log                *logrus.Logger
	now                func() time.Time
}

type Option func(*ReservationService)

func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

func NewReservationService(
	reservations repository.ReservationRepository,
	trips repository.TripRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	tickets TicketRenderer,
	notificationsTopic string,
	holdTTL time.Duration,
	log *logrus.Logger,
	opts ...Option,
) *ReservationService {
	s := &ReservationService{
		reservations:       reservations,
		trips:              trips,
		users:              users,
		cache:              cache,
		producer:           producer,
		tickets:            tickets,
		notificationsTopic: notificationsTopic,
		holdTTL:            holdTTL,
		log:                log,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places a 10-minute hold on a seat. The seat-availability check
// and the insert are one atomic statement in the repository; the redis
// lock in front of it only short-circuits the common race. The
// confirmation email is published to the notifications topic and never
// fails the reservation.
func (s *ReservationService) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	trip, err := s.trips.GetByID(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if fieldErrs := validate.Reservation(validate.ReservationData{
		TripID:        input.TripID,
		SeatNumber:    input.SeatNumber,
		SeatsTotal:    trip.SeatsTotal,
		PaymentMethod: input.PaymentMethod,
	}); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, input.TripID, input.SeatNumber, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSeatTaken
		}
		locked = true
	}

	expiresAt := s.now().Add(s.holdTTL)
	res := &domain.Reservation{
		UserID:        input.UserID,
		TripID:        input.TripID,
		SeatNumber:    input.SeatNumber,
		PaymentMethod: input.PaymentMethod,
		AmountCents:   trip.PriceCents,
		Code:          NewCode(),
		ExpiresAt:     &expiresAt,
	}

	if err := s.reservations.CreatePendingIfFree(ctx, res); err != nil {
		if locked {
			_ = s.cache.ReleaseSeatLock(ctx, input.TripID, input.SeatNumber)
		}
		if errors.Is(err, repository.ErrSeatTaken) {
			return nil, ErrSeatTaken
		}
		return nil, err
	}

	s.publish(ctx, kafka.EventReservationCreated, res, trip, input.UserEmail)

	return &CreateResult{
		ReservationID: res.ID,
		Code:          res.Code,
		Summary:       summarize(res, trip),
	}, nil
}

func (s *ReservationService) GetByCode(ctx context.Context, code string) (*Detail, error) {
	res, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	trip, err := s.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return nil, err
	}
	return &Detail{Reservation: res, Summary: summarize(res, trip)}, nil
}

func (s *ReservationService) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

func (s *ReservationService) Confirm(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	current, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.ReservationStatusPending || !current.Active(s.now()) {
		return nil, ErrNotPending
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.TripID, updated.SeatNumber)
	}
	s.publishForUser(ctx, kafka.EventReservationConfirmed, updated)
	return updated, nil
}

func (s *ReservationService) Cancel(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	current, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.ReservationStatusCancelled || current.Status == domain.ReservationStatusExpired {
		return current, nil
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.TripID, updated.SeatNumber)
	}
	s.publishForUser(ctx, kafka.EventReservationCancelled, updated)
	return updated, nil
}

// Ticket renders the PDF for a reservation and records its URL on
// first generation.
func (s *ReservationService) Ticket(ctx context.Context, id, userID int64) ([]byte, error) {
	res, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if res.Status != domain.ReservationStatusPending && res.Status != domain.ReservationStatusConfirmed && res.Status != domain.ReservationStatusCompleted {
		return nil, ErrReservationNotFound
	}

	trip, err := s.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return nil, err
	}

	userName := ""
	if user, err := s.users.GetByID(ctx, res.UserID); err == nil {
		userName = user.Name
	}

	pdf, err := s.tickets.Render(res, trip, userName)
	if err != nil {
		return nil, err
	}

	if res.TicketURL == nil {
		url := fmt.Sprintf("/reservations/%d/ticket", res.ID)
		if err := s.reservations.SetTicketURL(ctx, res.ID, url); err != nil {
			s.log.WithError(err).WithField("reservation_id", res.ID).Warn("ticket url not recorded")
		}
	}
	return pdf, nil
}

// ExpirePendingReservations is the worker sweep: expired pending holds
// become terminal and their seat locks are released.
func (s *ReservationService) ExpirePendingReservations(ctx context.Context) ([]domain.Reservation, error) {
	expired, err := s.reservations.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		res := &expired[i]
		if s.cache != nil {
			_ = s.cache.ReleaseSeatLock(ctx, res.TripID, res.SeatNumber)
		}
		s.publishForUser(ctx, kafka.EventReservationExpired, res)
	}
	return expired, nil
}

func (s *ReservationService) owned(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	return res, nil
}

func (s *ReservationService) publishForUser(ctx context.Context, eventType string, res *domain.Reservation) {
	email := ""
	if user, err := s.users.GetByID(ctx, res.UserID); err == nil {
		email = user.Email
	}
	trip, err := s.trips.GetByID(ctx, res.TripID)
	if err != nil {
		trip = &domain.Trip{}
	}
	s.publish(ctx, eventType, res, trip, email)
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *domain.Reservation, trip *domain.Trip, email string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		Type:        eventType,
		Code:        res.Code,
		TripID:      res.TripID,
		Route:       trip.Route(),
		Date:        trip.DepartureDate.Format("2006-01-02"),
		Time:        trip.DepartureTime,
		SeatNumber:  res.SeatNumber,
		AmountCents: res.AmountCents,
		Email:       email,
		Status:      string(res.Status),
		ExpiresAt:   res.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, res.Code, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": eventType, "code": res.Code}).Warn("notification publish failed")
	}
}

func summarize(res *domain.Reservation, trip *domain.Trip) Summary {
	return Summary{
		Route:      trip.Route(),
		Date:       trip.DepartureDate.Format("2006-01-02"),
		Time:       trip.DepartureTime,
		SeatNumber: res.SeatNumber,
		PriceCents: res.AmountCents,
		Status:     string(res.Status),
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
