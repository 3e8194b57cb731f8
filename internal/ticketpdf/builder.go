// Package ticketpdf assembles printable e-tickets.
package ticketpdf

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/shopspring/decimal"
)

// Sequencer issues ticket numbers.
type Sequencer interface {
	Next(ctx context.Context) (domain.TicketNumber, error)
}

// CodeEncoder renders a payload as a scannable square image.
type CodeEncoder interface {
	Encode(payload string, size int) (*image.RGBA, error)
}

// Point is a position on the page in points, origin bottom-left.
type Point struct {
	X, Y float64
}

// Layout fixes where each element of the ticket is placed.
type Layout struct {
	Font      Font
	Logo      Point
	Label     Point
	Titulaire Point
	Event     Point
	Date      Point
	Seats     Point
	Total     Point
	Code      Point
	CodeSize  int
	Currency  string
}

// DefaultLayout stacks the text at x=140 below a top-left logo, with the
// QR code on the left.
var DefaultLayout = Layout{
	Font:      Font{Family: "Helvetica", Bold: true, Size: 12},
	Logo:      Point{X: 10, Y: 700},
	Label:     Point{X: 140, Y: 670},
	Titulaire: Point{X: 140, Y: 650},
	Event:     Point{X: 140, Y: 630},
	Date:      Point{X: 140, Y: 610},
	Seats:     Point{X: 140, Y: 590},
	Total:     Point{X: 140, Y: 570},
	Code:      Point{X: 20, Y: 580},
	CodeSize:  100,
	Currency:  "Euros",
}

// Document is a finished ticket.
type Document struct {
	Number domain.TicketNumber
	Total  decimal.Decimal
	Bytes  []byte
}

// Builder renders tickets. It is safe for concurrent use when its sequencer is.
type Builder struct {
	seq    Sequencer
	codes  CodeEncoder
	canvas CanvasFactory
	layout Layout
}

func NewBuilder(seq Sequencer, codes CodeEncoder, canvas CanvasFactory) *Builder {
	return &Builder{
		seq:    seq,
		codes:  codes,
		canvas: canvas,
		layout: DefaultLayout,
	}
}

// FormatTotal renders an amount with two decimals, rounding half away from zero.
func FormatTotal(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Build issues the next ticket number and renders the ticket for req.
// Invalid requests are rejected before a number is consumed.
func (b *Builder) Build(ctx context.Context, req domain.TicketRequest) (Document, error) {
	if err := validate(req); err != nil {
		return Document{}, err
	}

	number, err := b.seq.Next(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("issue ticket number: %w", err)
	}
	label := number.Label()

	code, err := b.codes.Encode(label, b.layout.CodeSize)
	if err != nil {
		return Document{}, fmt.Errorf("encode ticket %d: %w", number, err)
	}

	total := req.Total()
	out, err := b.render(req, label, total, code)
	if err != nil {
		return Document{}, fmt.Errorf("render ticket %d: %w", number, err)
	}
	return Document{Number: number, Total: total, Bytes: out}, nil
}

func (b *Builder) render(req domain.TicketRequest, label string, total decimal.Decimal, code image.Image) (_ []byte, err error) {
	c, err := b.canvas()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire canvas: %v", domain.ErrDocument, err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close canvas: %v", domain.ErrDocument, cerr)
		}
	}()

	l := b.layout
	if err := c.DrawImage(req.Logo, l.Logo.X, l.Logo.Y); err != nil {
		return nil, err
	}
	lines := []struct {
		at   Point
		text string
	}{
		{l.Label, label},
		{l.Titulaire, req.Titulaire},
		{l.Event, "Epreuve: " + req.Event.Name},
		{l.Date, "Date: " + req.Event.FormattedDate()},
		{l.Seats, "Nombre de places: " + strconv.Itoa(req.Seats)},
		{l.Total, "Prix total: " + FormatTotal(total) + " " + l.Currency},
	}
	for _, line := range lines {
		if err := c.WriteText(l.Font, line.at.X, line.at.Y, line.text); err != nil {
			return nil, err
		}
	}
	if err := c.DrawImage(code, l.Code.X, l.Code.Y); err != nil {
		return nil, err
	}
	return c.Bytes()
}

func validate(req domain.TicketRequest) error {
	if req.Titulaire == "" {
		return domain.ErrTitulaireRequired
	}
	if req.Seats <= 0 {
		return domain.ErrInvalidQuantity
	}
	if req.Event.UnitPrice.IsNegative() {
		return domain.ErrInvalidPrice
	}
	if req.Logo == nil || req.Logo.Bounds().Empty() {
		return fmt.Errorf("%w: missing logo", domain.ErrDocument)
	}
	return nil
}
