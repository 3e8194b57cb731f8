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

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Prices travel as text so NUMERIC keeps its exact value.
const selectEvent = `SELECT id, name, event_date, unit_price::text FROM events`

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, event_date, unit_price)
VALUES ($1, $2, $3, $4::text::numeric)`
	_, err := r.pool.Exec(ctx, stmt, event.ID, event.Name, event.Date, event.UnitPrice.String())
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, selectEvent+` ORDER BY event_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, selectEvent+` WHERE id = $1`, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	return event, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		event domain.Event
		price string
	)
	if err := row.Scan(&event.ID, &event.Name, &event.Date, &price); err != nil {
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}
	unit, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse unit price %q: %w", price, err)
	}
	event.UnitPrice = unit
	event.Date = event.Date.UTC()
	return event, nil
}
