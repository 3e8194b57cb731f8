package ticketpdf

import "image"

// Font selects the face used for a text run.
type Font struct {
	Family string
	Bold   bool
	Size   float64
}

// Canvas is a single-page drawing surface. Coordinates are in points with the
// origin at the bottom-left corner of the page; images are anchored by their
// bottom-left corner and text by its baseline origin.
//
// A Canvas is owned by one build. Close releases it and must be safe to call
// after Bytes.
type Canvas interface {
	DrawImage(img image.Image, x, y float64) error
	WriteText(font Font, x, y float64, text string) error
	Bytes() ([]byte, error)
	Close() error
}

// CanvasFactory acquires a fresh canvas for one document.
type CanvasFactory func() (Canvas, error)
