// Package matrixcode turns ticket labels into QR code rasters.
package matrixcode

import (
	"fmt"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/skip2/go-qrcode"
)

// quietZone is the light border, in modules, required around a QR symbol.
const quietZone = 4

// Level is a QR error-correction level.
type Level int

const (
	LevelL Level = iota
	LevelM
	LevelQ
	LevelH
)

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelM:
		return qrcode.Medium
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Low
	}
}

func (l Level) String() string {
	return [...]string{"L", "M", "Q", "H"}[l.normalize()]
}

func (l Level) normalize() Level {
	if l < LevelL || l > LevelH {
		return LevelL
	}
	return l
}

// Matrix is a grid of cells; a true cell is a dark module.
type Matrix struct {
	width  int
	height int
	cells  []bool
}

func newMatrix(width, height int) *Matrix {
	return &Matrix{width: width, height: height, cells: make([]bool, width*height)}
}

func (m *Matrix) Width() int  { return m.width }
func (m *Matrix) Height() int { return m.height }

// Get reports whether the cell at (x, y) is dark. Out of range cells are light.
func (m *Matrix) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

func (m *Matrix) setRegion(left, top, w, h int) {
	for y := top; y < top+h; y++ {
		for x := left; x < left+w; x++ {
			m.cells[y*m.width+x] = true
		}
	}
}

// trimQuietZone drops the border the encoder always adds so the symbol can be
// scaled on its own.
func trimQuietZone(bitmap [][]bool) [][]bool {
	if len(bitmap) <= 2*quietZone {
		return bitmap
	}
	rows := bitmap[quietZone : len(bitmap)-quietZone]
	out := make([][]bool, len(rows))
	for i, row := range rows {
		out[i] = row[quietZone : len(row)-quietZone]
	}
	return out
}

// GenerateMatrix encodes payload as a QR symbol and lays it out on a grid of
// at least width x height cells. Modules are scaled by the largest integer
// factor that fits the symbol plus its quiet zone, and the symbol is centred.
// The grid grows beyond width x height when the symbol does not fit.
func GenerateMatrix(payload string, width, height int, level Level) (*Matrix, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrEncoding)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", domain.ErrEncoding, width, height)
	}

	code, err := qrcode.New(payload, level.normalize().recovery())
	if err != nil {
		return nil, fmt.Errorf("%w: level %s: %v", domain.ErrEncoding, level, err)
	}
	modules := trimQuietZone(code.Bitmap())

	inputSize := len(modules)
	qrSize := inputSize + 2*quietZone
	outWidth := max(width, qrSize)
	outHeight := max(height, qrSize)
	multiple := min(outWidth/qrSize, outHeight/qrSize)
	left := (outWidth - inputSize*multiple) / 2
	top := (outHeight - inputSize*multiple) / 2

	m := newMatrix(outWidth, outHeight)
	for y, row := range modules {
		for x, dark := range row {
			if dark {
				m.setRegion(left+x*multiple, top+y*multiple, multiple, multiple)
			}
		}
	}
	return m, nil
}
