package domain

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TicketLabelPrefix precedes the zero-padded number on the ticket and in its QR code.
const TicketLabelPrefix = "Ticket N°"

// TicketNumber is the sequential identifier of one issued ticket. Zero is never issued.
type TicketNumber uint64

// MaxTicketNumber is the highest number any sequencer issues. It matches the
// BIGINT ticket column and the range of Redis INCR.
const MaxTicketNumber TicketNumber = math.MaxInt64

// Label returns the printed identifier, e.g. "Ticket N°000042".
// Numbers above 999999 are printed with all their digits.
func (n TicketNumber) Label() string {
	return fmt.Sprintf("%s%06d", TicketLabelPrefix, uint64(n))
}

// TicketRequest carries the inputs of one document build.
type TicketRequest struct {
	Titulaire string
	Event     Event
	Seats     int
	Logo      image.Image
}

// Total returns the unit price times the seat count.
func (r TicketRequest) Total() decimal.Decimal {
	return r.Event.UnitPrice.Mul(decimal.NewFromInt(int64(r.Seats)))
}

// Ticket is the record kept for an issued ticket.
type Ticket struct {
	ID        string
	Number    TicketNumber
	EventID   string
	Titulaire string
	Seats     int
	Total     decimal.Decimal
	IssuedAt  time.Time
}
