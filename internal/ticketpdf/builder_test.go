package ticketpdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/matrixcode"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/sequencer"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestBuilder_BuildEndToEnd(t *testing.T) {
	t.Parallel()

	rec := &recordingCanvas{out: []byte("%PDF-fake")}
	b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), rec.factory)

	doc, err := b.Build(context.Background(), martinRequest(testLogo()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Number != 1 {
		t.Fatalf("expected ticket 1, got %d", doc.Number)
	}
	if !bytes.Equal(doc.Bytes, rec.out) {
		t.Fatalf("expected canvas bytes to be returned")
	}
	if doc.Total.StringFixed(2) != "30.00" {
		t.Fatalf("expected total 30.00, got %s", doc.Total)
	}

	wantTexts := []textRun{
		{x: 140, y: 670, text: "Ticket N°000001"},
		{x: 140, y: 650, text: "A. Martin"},
		{x: 140, y: 630, text: "Epreuve: 10km"},
		{x: 140, y: 610, text: "Date: 12/05/2024"},
		{x: 140, y: 590, text: "Nombre de places: 2"},
		{x: 140, y: 570, text: "Prix total: 30.00 Euros"},
	}
	if len(rec.texts) != len(wantTexts) {
		t.Fatalf("expected %d text runs, got %d", len(wantTexts), len(rec.texts))
	}
	for i, want := range wantTexts {
		got := rec.texts[i]
		if got.x != want.x || got.y != want.y || got.text != want.text {
			t.Fatalf("text run %d: expected %+v, got %+v", i, want, got)
		}
		if got.font != DefaultLayout.Font {
			t.Fatalf("text run %d: unexpected font %+v", i, got.font)
		}
	}

	if len(rec.images) != 2 {
		t.Fatalf("expected logo and code images, got %d", len(rec.images))
	}
	if rec.images[0].x != 10 || rec.images[0].y != 700 {
		t.Fatalf("unexpected logo position %+v", rec.images[0])
	}
	code := rec.images[1]
	if code.x != 20 || code.y != 580 {
		t.Fatalf("unexpected code position (%v, %v)", code.x, code.y)
	}
	if got := testutil.DecodeQR(t, code.img); got != "Ticket N°000001" {
		t.Fatalf("expected code to decode to Ticket N°000001, got %q", got)
	}
	if rec.closed != 1 {
		t.Fatalf("expected canvas closed once, got %d", rec.closed)
	}
}

func TestBuilder_BuildTotalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price string
		seats int
		want  string
	}{
		{price: "12.5", seats: 3, want: "Prix total: 37.50 Euros"},
		{price: "0", seats: 4, want: "Prix total: 0.00 Euros"},
		{price: "0.125", seats: 1, want: "Prix total: 0.13 Euros"},
		{price: "2.675", seats: 1, want: "Prix total: 2.68 Euros"},
		{price: "0.105", seats: 3, want: "Prix total: 0.32 Euros"},
	}
	for _, tt := range tests {
		rec := &recordingCanvas{}
		b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), rec.factory)
		req := martinRequest(testLogo())
		req.Event.UnitPrice = decimal.RequireFromString(tt.price)
		req.Seats = tt.seats

		if _, err := b.Build(context.Background(), req); err != nil {
			t.Fatalf("price %s: expected no error, got %v", tt.price, err)
		}
		if got := rec.texts[len(rec.texts)-1].text; got != tt.want {
			t.Fatalf("price %s x %d: expected %q, got %q", tt.price, tt.seats, tt.want, got)
		}
	}
}

func TestBuilder_BuildUsesOneNumberPerCall(t *testing.T) {
	t.Parallel()

	seq := sequencer.NewCounter()
	for want := domain.TicketNumber(1); want <= 3; want++ {
		rec := &recordingCanvas{}
		doc, err := NewBuilder(seq, matrixcode.NewEncoder(), rec.factory).
			Build(context.Background(), martinRequest(testLogo()))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Number != want {
			t.Fatalf("expected ticket %d, got %d", want, doc.Number)
		}
		if rec.texts[0].text != want.Label() {
			t.Fatalf("expected label %q, got %q", want.Label(), rec.texts[0].text)
		}
	}
	if seq.Last() != 3 {
		t.Fatalf("expected 3 numbers issued, got %d", seq.Last())
	}
}

func TestBuilder_BuildValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*domain.TicketRequest)
		wantErr error
	}{
		{
			name:    "missing titulaire",
			mutate:  func(r *domain.TicketRequest) { r.Titulaire = "" },
			wantErr: domain.ErrTitulaireRequired,
		},
		{
			name:    "zero seats",
			mutate:  func(r *domain.TicketRequest) { r.Seats = 0 },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "negative price",
			mutate:  func(r *domain.TicketRequest) { r.Event.UnitPrice = decimal.NewFromInt(-1) },
			wantErr: domain.ErrInvalidPrice,
		},
		{
			name:    "missing logo",
			mutate:  func(r *domain.TicketRequest) { r.Logo = nil },
			wantErr: domain.ErrDocument,
		},
		{
			name:    "empty logo",
			mutate:  func(r *domain.TicketRequest) { r.Logo = image.NewRGBA(image.Rect(0, 0, 0, 0)) },
			wantErr: domain.ErrDocument,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq := sequencer.NewCounter()
			rec := &recordingCanvas{}
			req := martinRequest(testLogo())
			tt.mutate(&req)

			doc, err := NewBuilder(seq, matrixcode.NewEncoder(), rec.factory).Build(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if doc.Bytes != nil {
				t.Fatalf("expected no bytes on failure")
			}
			if seq.Last() != 0 {
				t.Fatalf("expected no ticket number consumed, got %d", seq.Last())
			}
			if rec.acquired != 0 {
				t.Fatalf("expected no canvas acquired")
			}
		})
	}
}

func TestBuilder_BuildFailures(t *testing.T) {
	t.Parallel()

	t.Run("encoding error propagates", func(t *testing.T) {
		rec := &recordingCanvas{}
		b := NewBuilder(sequencer.NewCounter(), failingEncoder{}, rec.factory)

		doc, err := b.Build(context.Background(), martinRequest(testLogo()))
		if !errors.Is(err, domain.ErrEncoding) {
			t.Fatalf("expected ErrEncoding, got %v", err)
		}
		if doc.Bytes != nil {
			t.Fatalf("expected no bytes on failure")
		}
	})

	t.Run("sequencer overflow propagates", func(t *testing.T) {
		rec := &recordingCanvas{}
		b := NewBuilder(sequencer.NewCounterFrom(1<<64-1), matrixcode.NewEncoder(), rec.factory)

		_, err := b.Build(context.Background(), martinRequest(testLogo()))
		if !errors.Is(err, domain.ErrSequencerOverflow) {
			t.Fatalf("expected ErrSequencerOverflow, got %v", err)
		}
	})

	t.Run("canvas acquisition failure", func(t *testing.T) {
		factory := func() (Canvas, error) { return nil, errors.New("no writer") }
		b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), factory)

		_, err := b.Build(context.Background(), martinRequest(testLogo()))
		if !errors.Is(err, domain.ErrDocument) {
			t.Fatalf("expected ErrDocument, got %v", err)
		}
	})

	t.Run("draw failure closes canvas", func(t *testing.T) {
		rec := &recordingCanvas{drawErr: errors.New("bad image")}
		b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), rec.factory)

		doc, err := b.Build(context.Background(), martinRequest(testLogo()))
		if err == nil || !strings.Contains(err.Error(), "bad image") {
			t.Fatalf("expected draw error, got %v", err)
		}
		if doc.Bytes != nil {
			t.Fatalf("expected no bytes on failure")
		}
		if rec.closed != 1 {
			t.Fatalf("expected canvas closed once, got %d", rec.closed)
		}
	})

	t.Run("serialize failure closes canvas", func(t *testing.T) {
		rec := &recordingCanvas{bytesErr: errors.New("disk full")}
		b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), rec.factory)

		doc, err := b.Build(context.Background(), martinRequest(testLogo()))
		if err == nil {
			t.Fatalf("expected error")
		}
		if doc.Bytes != nil {
			t.Fatalf("expected no bytes on failure")
		}
		if rec.closed != 1 {
			t.Fatalf("expected canvas closed once, got %d", rec.closed)
		}
	})

	t.Run("close failure is reported", func(t *testing.T) {
		rec := &recordingCanvas{closeErr: errors.New("flush")}
		b := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), rec.factory)

		doc, err := b.Build(context.Background(), martinRequest(testLogo()))
		if !errors.Is(err, domain.ErrDocument) {
			t.Fatalf("expected ErrDocument, got %v", err)
		}
		if doc.Bytes != nil {
			t.Fatalf("expected no bytes on failure")
		}
	})
}

func TestBuilder_BuildWithFPDF(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	factory := NewFPDFFactory(FPDFOptions{Clock: clock.NewFixed(issued), Uncompressed: true})

	doc, err := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), factory).
		Build(context.Background(), martinRequest(testLogo()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF-")) {
		t.Fatalf("expected a PDF header, got %q", doc.Bytes[:8])
	}
	for _, want := range []string{
		"Ticket N",
		"000001",
		"A. Martin",
		"Epreuve: 10km",
		"Date: 12/05/2024",
		"Nombre de places: 2",
		"Prix total: 30.00 Euros",
		"/Helvetica-Bold",
	} {
		if !bytes.Contains(doc.Bytes, []byte(want)) {
			t.Fatalf("expected document to contain %q", want)
		}
	}
	if n := bytes.Count(doc.Bytes, []byte("/Subtype /Image")); n != 2 {
		t.Fatalf("expected 2 embedded images, got %d", n)
	}
}

func TestBuilder_BuildWithFPDFIsReproducible(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	render := func() []byte {
		factory := NewFPDFFactory(FPDFOptions{Clock: clock.NewFixed(issued)})
		doc, err := NewBuilder(sequencer.NewCounter(), matrixcode.NewEncoder(), factory).
			Build(context.Background(), martinRequest(testLogo()))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return doc.Bytes
	}
	if !bytes.Equal(render(), render()) {
		t.Fatalf("expected identical documents for identical inputs")
	}
}

func TestDecodeLogo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testLogo()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	img, err := DecodeLogo(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if img.Bounds().Dx() != 120 {
		t.Fatalf("expected width 120, got %d", img.Bounds().Dx())
	}

	if _, err := DecodeLogo(strings.NewReader("not an image")); !errors.Is(err, domain.ErrDocument) {
		t.Fatalf("expected ErrDocument, got %v", err)
	}
	if _, err := LoadLogoFile("/nonexistent/logo.png"); !errors.Is(err, domain.ErrDocument) {
		t.Fatalf("expected ErrDocument, got %v", err)
	}
}

func martinRequest(logo image.Image) domain.TicketRequest {
	return domain.TicketRequest{
		Titulaire: "A. Martin",
		Event: domain.Event{
			ID:        "event-1",
			Name:      "10km",
			Date:      time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC),
			UnitPrice: decimal.RequireFromString("15.0"),
		},
		Seats: 2,
		Logo:  logo,
	}
}

func testLogo() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: 0x40, B: uint8(y), A: 0xff})
		}
	}
	return img
}

type textRun struct {
	font Font
	x, y float64
	text string
}

type imageRun struct {
	img  image.Image
	x, y float64
}

type recordingCanvas struct {
	out      []byte
	drawErr  error
	bytesErr error
	closeErr error

	acquired int
	closed   int
	texts    []textRun
	images   []imageRun
}

func (r *recordingCanvas) factory() (Canvas, error) {
	r.acquired++
	return r, nil
}

func (r *recordingCanvas) DrawImage(img image.Image, x, y float64) error {
	if r.drawErr != nil {
		return r.drawErr
	}
	r.images = append(r.images, imageRun{img: img, x: x, y: y})
	return nil
}

func (r *recordingCanvas) WriteText(font Font, x, y float64, text string) error {
	r.texts = append(r.texts, textRun{font: font, x: x, y: y, text: text})
	return nil
}

func (r *recordingCanvas) Bytes() ([]byte, error) {
	if r.bytesErr != nil {
		return nil, r.bytesErr
	}
	if r.out == nil {
		return []byte("%PDF-"), nil
	}
	return r.out, nil
}

func (r *recordingCanvas) Close() error {
	r.closed++
	return r.closeErr
}

type failingEncoder struct{}

func (failingEncoder) Encode(_ string, _ int) (*image.RGBA, error) {
	return nil, domain.ErrEncoding
}
