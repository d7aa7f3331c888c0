package trips

import (
	"context"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/sirupsen/logrus"
)

type TripUseCase interface {
	Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
}

// Cache holds search results per (from, to, date) key.
type Cache interface {
	GetTrips(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error)
	SetTrips(ctx context.Context, from, to string, date time.Time, trips []domain.Trip) error
}

type TripService struct {
	repo  repository.TripRepository
	cache Cache
	log   *logrus.Logger
}

func NewTripService(repo repository.TripRepository, cache Cache, log *logrus.Logger) *TripService {
	return &TripService{repo: repo, cache: cache, log: log}
}

func (s *TripService) Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTrips(ctx, from, to, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	trips, err := s.repo.Search(ctx, from, to, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, from, to, date, trips); err != nil {
			s.log.WithError(err).Warn("trip cache write failed")
		}
	}
	return trips, nil
}

func (s *TripService) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	return s.repo.GetByID(ctx, id)
}

var _ TripUseCase = (*TripService)(nil)
