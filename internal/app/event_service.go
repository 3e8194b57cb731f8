package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Name      string
	Date      *time.Time
	UnitPrice decimal.Decimal
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	if in.UnitPrice.IsNegative() {
		return domain.Event{}, domain.ErrInvalidPrice
	}
	date := s.clock.Now()
	if in.Date != nil {
		date = in.Date.UTC()
	}

	event := domain.Event{
		ID:        uuid.NewString(),
		Name:      name,
		Date:      date,
		UnitPrice: in.UnitPrice,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	if id == "" {
		return domain.Event{}, domain.ErrInvalidID
	}
	return s.repo.GetEvent(ctx, id)
}
