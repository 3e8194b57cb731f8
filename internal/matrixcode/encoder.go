package matrixcode

import (
	"image"
	"image/color"
	"image/draw"
)

// Encoder renders payloads as black on white QR images at the lowest
// error-correction level.
type Encoder struct {
	level Level
}

func NewEncoder() *Encoder {
	return &Encoder{level: LevelL}
}

// Encode returns an image whose size is the native size of the generated
// matrix, which may exceed size when the symbol needs more room.
func (e *Encoder) Encode(payload string, size int) (*image.RGBA, error) {
	m, err := GenerateMatrix(payload, size, size, e.level)
	if err != nil {
		return nil, err
	}
	return Rasterize(m), nil
}

// Rasterize paints one black pixel per dark cell on a white RGB image.
func Rasterize(m *Matrix) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	black := color.RGBA{A: 0xff}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				img.SetRGBA(x, y, black)
			}
		}
	}
	return img
}
