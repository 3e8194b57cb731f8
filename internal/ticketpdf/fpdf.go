package ticketpdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var errCanvasClosed = errors.New("canvas closed")

// FPDFOptions configures PDF canvases.
type FPDFOptions struct {
	// Clock stamps the document dates. Nil uses the system clock.
	Clock clock.Clock
	// Uncompressed leaves content streams in clear text.
	Uncompressed bool
}

// NewFPDFFactory returns a factory of US Letter PDF canvases.
func NewFPDFFactory(opts FPDFOptions) CanvasFactory {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return func() (Canvas, error) {
		return NewFPDFCanvas(clk, !opts.Uncompressed)
	}
}

// FPDFCanvas renders a one-page PDF in memory.
type FPDFCanvas struct {
	pdf        *fpdf.Fpdf
	encoder    *encoding.Encoder
	pageHeight float64
	images     int
}

func NewFPDFCanvas(clk clock.Clock, compress bool) (*FPDFCanvas, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "Letter",
	})
	now := clk.Now()
	pdf.SetCompression(compress)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: create pdf: %v", domain.ErrDocument, err)
	}

	_, h := pdf.GetPageSize()
	return &FPDFCanvas{
		pdf:        pdf,
		encoder:    encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
		pageHeight: h,
	}, nil
}

func (c *FPDFCanvas) DrawImage(img image.Image, x, y float64) error {
	if c.pdf == nil {
		return fmt.Errorf("%w: %v", domain.ErrDocument, errCanvasClosed)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: encode image: %v", domain.ErrDocument, err)
	}

	c.images++
	name := "img" + strconv.Itoa(c.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, &buf)

	// One pixel per point, anchored at the bottom-left like the other calls.
	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	c.pdf.ImageOptions(name, x, c.pageHeight-y-h, w, h, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("%w: draw image: %v", domain.ErrDocument, err)
	}
	return nil
}

func (c *FPDFCanvas) WriteText(font Font, x, y float64, text string) error {
	if c.pdf == nil {
		return fmt.Errorf("%w: %v", domain.ErrDocument, errCanvasClosed)
	}
	// Core fonts are WinAnsi encoded.
	encoded, err := c.encoder.String(text)
	if err != nil {
		return fmt.Errorf("%w: encode text: %v", domain.ErrDocument, err)
	}
	style := ""
	if font.Bold {
		style = "B"
	}
	c.pdf.SetFont(font.Family, style, font.Size)
	c.pdf.Text(x, c.pageHeight-y, encoded)
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("%w: write text: %v", domain.ErrDocument, err)
	}
	return nil
}

func (c *FPDFCanvas) Bytes() ([]byte, error) {
	if c.pdf == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocument, errCanvasClosed)
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: serialize pdf: %v", domain.ErrDocument, err)
	}
	return buf.Bytes(), nil
}

// Close drops the document. Later calls fail.
func (c *FPDFCanvas) Close() error {
	c.pdf = nil
	return nil
}
