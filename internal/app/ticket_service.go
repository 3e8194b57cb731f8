package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/ticketpdf"
	"github.com/google/uuid"
)

type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicketByNumber(ctx context.Context, number domain.TicketNumber) (domain.Ticket, error)
}

// EventReader resolves the event a ticket is sold for.
type EventReader interface {
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

// TicketBuilder renders the ticket document.
type TicketBuilder interface {
	Build(ctx context.Context, req domain.TicketRequest) (ticketpdf.Document, error)
}

// LogoProvider supplies the decoded logo printed on every ticket.
type LogoProvider interface {
	Logo() (image.Image, error)
}

type TicketService struct {
	events  EventReader
	tickets TicketRepository
	builder TicketBuilder
	logos   LogoProvider
	clock   clock.Clock
	logger  *slog.Logger
}

type TicketServiceOption func(*TicketService)

// WithLogger sets the logger used to report issued tickets.
func WithLogger(logger *slog.Logger) TicketServiceOption {
	return func(s *TicketService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewTicketService(events EventReader, tickets TicketRepository, builder TicketBuilder, logos LogoProvider, clk clock.Clock, opts ...TicketServiceOption) *TicketService {
	svc := &TicketService{
		events:  events,
		tickets: tickets,
		builder: builder,
		logos:   logos,
		clock:   clk,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type IssueTicketInput struct {
	EventID   string
	Titulaire string
	Seats     int
}

type IssueTicketResult struct {
	Ticket   domain.Ticket
	Document []byte
}

// IssueTicket renders a ticket for the event and records it. The document is
// returned only once the record is stored.
func (s *TicketService) IssueTicket(ctx context.Context, in IssueTicketInput) (IssueTicketResult, error) {
	titulaire := strings.TrimSpace(in.Titulaire)
	if titulaire == "" {
		return IssueTicketResult{}, domain.ErrTitulaireRequired
	}
	if in.Seats <= 0 {
		return IssueTicketResult{}, domain.ErrInvalidQuantity
	}
	if in.EventID == "" {
		return IssueTicketResult{}, domain.ErrInvalidID
	}

	event, err := s.events.GetEvent(ctx, in.EventID)
	if err != nil {
		return IssueTicketResult{}, err
	}
	logo, err := s.logos.Logo()
	if err != nil {
		return IssueTicketResult{}, fmt.Errorf("load logo: %w", err)
	}

	doc, err := s.builder.Build(ctx, domain.TicketRequest{
		Titulaire: titulaire,
		Event:     event,
		Seats:     in.Seats,
		Logo:      logo,
	})
	if err != nil {
		return IssueTicketResult{}, err
	}

	ticket := domain.Ticket{
		ID:        uuid.NewString(),
		Number:    doc.Number,
		EventID:   event.ID,
		Titulaire: titulaire,
		Seats:     in.Seats,
		Total:     doc.Total,
		IssuedAt:  s.clock.Now(),
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		return IssueTicketResult{}, fmt.Errorf("record ticket %d: %w", ticket.Number, err)
	}

	s.logger.InfoContext(ctx, "ticket issued",
		"number", uint64(ticket.Number),
		"event_id", ticket.EventID,
		"seats", ticket.Seats,
		"total", ticket.Total.StringFixed(2),
		"size_bytes", len(doc.Bytes),
	)
	return IssueTicketResult{Ticket: ticket, Document: doc.Bytes}, nil
}

func (s *TicketService) GetTicket(ctx context.Context, number domain.TicketNumber) (domain.Ticket, error) {
	if number == 0 {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	return s.tickets.GetTicketByNumber(ctx, number)
}
