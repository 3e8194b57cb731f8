package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TicketRepository stores the record of every issued ticket.
type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, number, event_id, titulaire, seats, total, issued_at)
VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		ticket.ID,
		int64(ticket.Number),
		ticket.EventID,
		ticket.Titulaire,
		ticket.Seats,
		ticket.Total.String(),
		ticket.IssuedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrTicketExists
		case isForeignKeyViolation(err):
			return domain.ErrEventNotFound
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicketByNumber(ctx context.Context, number domain.TicketNumber) (domain.Ticket, error) {
	const query = `
SELECT id, number, event_id, titulaire, seats, total::text, issued_at
FROM tickets
WHERE number = $1`

	var (
		t     domain.Ticket
		num   int64
		total string
	)
	err := r.pool.QueryRow(ctx, query, int64(number)).
		Scan(&t.ID, &num, &t.EventID, &t.Titulaire, &t.Seats, &total, &t.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	t.Number = domain.TicketNumber(num)
	t.IssuedAt = t.IssuedAt.UTC()
	if t.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Ticket{}, fmt.Errorf("parse ticket total %q: %w", total, err)
	}
	return t, nil
}

// LastTicketNumber returns the highest number recorded, or 0 when no ticket
// was issued yet.
func (r *TicketRepository) LastTicketNumber(ctx context.Context) (domain.TicketNumber, error) {
	var last int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(number), 0) FROM tickets`).Scan(&last); err != nil {
		return 0, fmt.Errorf("last ticket number: %w", err)
	}
	return domain.TicketNumber(last), nil
}
