package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_service/internal/domain"
)

const (
	// LargePayloadThreshold is the page size above which GetAllHotels
	// records a large payload event.
	LargePayloadThreshold = 50

	CounterLargePayload = "hotel_service.get_all.large_payload"
)

type HotelService struct {
	repo    domain.HotelRepository
	metrics domain.MetricsSink
}

func NewHotelService(r domain.HotelRepository, m domain.MetricsSink) *HotelService {
	return &HotelService{repo: r, metrics: m}
}

// CreateHotel persists h as a new row; any caller-supplied ID is ignored.
func (s *HotelService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.ID = 0
	return s.repo.Save(ctx, h)
}

// GetHotel returns domain.ErrNotFound when no row has the given id.
func (s *HotelService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateHotel overwrites an existing row inside a transaction. It never
// inserts: an unknown or zero ID yields domain.ErrNotFound.
func (s *HotelService) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	if h.ID == 0 {
		return domain.ErrNotFound
	}
	return s.repo.InTx(ctx, func(tx domain.HotelRepository) error {
		_, err := tx.Save(ctx, h)
		return err
	})
}

func (s *HotelService) DeleteHotel(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}

// GetAllHotels returns the zero-indexed page of hotels ordered by id.
func (s *HotelService) GetAllHotels(ctx context.Context, page, size int) (domain.Page, error) {
	pr := domain.PageRequest{Page: page, Size: size}
	if err := pr.Validate(); err != nil {
		return domain.Page{}, err
	}
	out, err := s.repo.FindAll(ctx, pr)
	if err != nil {
		return domain.Page{}, err
	}
	if size > LargePayloadThreshold {
		s.increment(CounterLargePayload)
	}
	return out, nil
}

// RedactHotelTitle masks digit runs in the stored title of one hotel.
func (s *HotelService) RedactHotelTitle(ctx context.Context, id int64) error {
	return s.repo.InTx(ctx, func(tx domain.HotelRepository) error {
		if err := tx.RedactTitle(ctx, id); err != nil {
			return fmt.Errorf("redact title of hotel %d: %w", id, err)
		}
		return nil
	})
}

// increment never lets the sink affect the request.
func (s *HotelService) increment(name string) {
	if s.metrics == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("counter", name).Interface("panic", r).Msg("metrics increment failed")
		}
	}()
	s.metrics.Increment(name)
}
