// Package image1bit provides a 1-bit black and white image format matching
// the row layout of Sharp Memory LCD panels.
//
// Each byte holds 8 horizontally adjacent pixels, least significant bit
// first, and every row starts on a byte boundary. This is the order the
// panel shifts row data in when the SPI bus runs LSB-first, so the pixel
// buffer can be transmitted without repacking.
package image1bit

import (
	"image"
	"image/color"
	"image/draw"
)

// Bit is a 1-bit color, either On or Off.
type Bit bool

// Possible bit values.
const (
	On  Bit = true
	Off Bit = false
)

// RGBA converts the bit to standard RGBA. On maps to white, Off to black.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	return convertBit(c)
}

// convertBit converts any color.Color to Bit using a 50% luminance
// threshold.
func convertBit(c color.Color) Bit {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Standard grayscale conversion: 0.299R + 0.587G + 0.114B
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// HorizontalLSB is a 1-bit image with pixels packed 8 per byte along each
// row, least significant bit first.
type HorizontalLSB struct {
	Pix    []byte          // Pixel data (8 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalLSB creates a new HorizontalLSB image with the specified
// bounds. Rows narrower than a byte multiple are padded with unused high
// bits in the final byte of the row.
func NewHorizontalLSB(r image.Rectangle) *HorizontalLSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalLSB{Rect: r}
	}

	stride := (w + 7) / 8
	return &HorizontalLSB{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (i *HorizontalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (i *HorizontalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (i *HorizontalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt returns the Bit value of the pixel at (x, y). Coordinates outside
// the bounds return Off.
func (i *HorizontalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return Off
	}
	offset, mask := i.pixOffset(x, y)
	return Bit(i.Pix[offset]&mask != 0)
}

// Set sets the color of the pixel at (x, y). Coordinates outside the
// bounds are silently ignored.
func (i *HorizontalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convertBit(c))
}

// SetBit sets the Bit value of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (i *HorizontalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.pixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
// Memory layout: bit n of a byte is pixel x%8 == n within the byte, so
// x == 0 is the least significant bit of the first byte of the row.
func (i *HorizontalLSB) pixOffset(x, y int) (offset int, mask byte) {
	offset = (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)/8
	mask = 1 << uint((x-i.Rect.Min.X)&7)
	return
}

var _ draw.Image = &HorizontalLSB{}
