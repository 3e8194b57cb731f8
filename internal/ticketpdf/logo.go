package ticketpdf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
)

// DecodeLogo reads a PNG or JPEG logo.
func DecodeLogo(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode logo: %v", domain.ErrDocument, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty logo", domain.ErrDocument)
	}
	return img, nil
}

// LoadLogoFile decodes the logo stored at path.
func LoadLogoFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open logo: %v", domain.ErrDocument, err)
	}
	defer f.Close()
	return DecodeLogo(f)
}

// FileLogo loads a logo from disk on first use and keeps it once decoded.
// Failed loads are retried on the next call.
type FileLogo struct {
	path string

	mu  sync.Mutex
	img image.Image
}

func NewFileLogo(path string) *FileLogo {
	return &FileLogo{path: path}
}

func (l *FileLogo) Logo() (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.img != nil {
		return l.img, nil
	}
	img, err := LoadLogoFile(l.path)
	if err != nil {
		return nil, err
	}
	l.img = img
	return img, nil
}
