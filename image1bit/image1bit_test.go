package image1bit

import (
	"image"
	"image/color"
	"testing"
)

func TestBitRGBA(t *testing.T) {
	tests := []struct {
		name string
		bit  Bit
		want uint32
	}{
		{"on is white", On, 0xFFFF},
		{"off is black", Off, 0x0000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.bit.RGBA()
			if r != tt.want || g != tt.want || b != tt.want || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, %x)",
					r, g, b, a, tt.want, tt.want, tt.want, uint32(0xFFFF))
			}
		})
	}
}

func TestBitString(t *testing.T) {
	if On.String() != "On" {
		t.Errorf("On.String() = %q, want \"On\"", On.String())
	}
	if Off.String() != "Off" {
		t.Errorf("Off.String() = %q, want \"Off\"", Off.String())
	}
}

func TestBitModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Bit
	}{
		{"bit passthrough on", On, On},
		{"bit passthrough off", Off, Off},
		{"black", color.Black, Off},
		{"white", color.White, On},
		{"dark gray", color.RGBA{0x40, 0x40, 0x40, 0xFF}, Off},
		{"light gray", color.RGBA{0xC0, 0xC0, 0xC0, 0xFF}, On},
		{"pure green is bright", color.RGBA{0x00, 0xFF, 0x00, 0xFF}, On},
		{"pure blue is dark", color.RGBA{0x00, 0x00, 0xFF, 0xFF}, Off},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BitModel.Convert(tt.input).(Bit)
			if result != tt.want {
				t.Errorf("BitModel.Convert(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}

func TestNewHorizontalLSB(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"400x240", image.Rect(0, 0, 400, 240), 50, 12000},
		{"160x68", image.Rect(0, 0, 160, 68), 20, 1360},
		{"8x1", image.Rect(0, 0, 8, 1), 1, 1},
		{"non byte aligned width", image.Rect(0, 0, 10, 2), 2, 4},
		{"offset rect", image.Rect(8, 8, 16, 10), 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewHorizontalLSB(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestHorizontalLSBBitPacking(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(0, 0, 16, 2))

	// x == 0 lands in the least significant bit of the row's first byte.
	img.SetBit(0, 0, On)
	if img.Pix[0] != 0x01 {
		t.Errorf("Pix[0] = %#02x, want 0x01", img.Pix[0])
	}

	img.SetBit(7, 0, On)
	if img.Pix[0] != 0x81 {
		t.Errorf("Pix[0] = %#02x, want 0x81", img.Pix[0])
	}

	img.SetBit(8, 0, On)
	if img.Pix[1] != 0x01 {
		t.Errorf("Pix[1] = %#02x, want 0x01", img.Pix[1])
	}

	// Second row starts at a byte boundary.
	img.SetBit(2, 1, On)
	if img.Pix[2] != 0x04 {
		t.Errorf("Pix[2] = %#02x, want 0x04", img.Pix[2])
	}

	// Unset clears only the targeted bit.
	img.SetBit(0, 0, Off)
	if img.Pix[0] != 0x80 {
		t.Errorf("Pix[0] = %#02x, want 0x80", img.Pix[0])
	}
}

func TestHorizontalLSBRoundTrip(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(0, 0, 24, 3))

	for y := 0; y < 3; y++ {
		for x := 0; x < 24; x++ {
			on := (x+y)%3 == 0
			img.SetBit(x, y, Bit(on))
		}
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 24; x++ {
			want := Bit((x+y)%3 == 0)
			if got := img.BitAt(x, y); got != want {
				t.Fatalf("BitAt(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestHorizontalLSBSetConvertsColors(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(0, 0, 8, 1))

	img.Set(0, 0, color.White)
	if img.BitAt(0, 0) != On {
		t.Error("Set(white) should produce On")
	}
	img.Set(0, 0, color.Black)
	if img.BitAt(0, 0) != Off {
		t.Error("Set(black) should produce Off")
	}
}

func TestHorizontalLSBClipping(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(0, 0, 8, 2))

	// Out of bounds writes are dropped without touching the buffer.
	img.SetBit(-1, 0, On)
	img.SetBit(8, 0, On)
	img.SetBit(0, -1, On)
	img.SetBit(0, 2, On)
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = %#02x after out of bounds writes, want 0", i, b)
		}
	}

	if img.BitAt(8, 0) != Off {
		t.Error("BitAt out of bounds should return Off")
	}
}

func TestHorizontalLSBOffsetRect(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(8, 8, 16, 10))

	img.SetBit(8, 8, On)
	if img.Pix[0] != 0x01 {
		t.Errorf("Pix[0] = %#02x, want 0x01", img.Pix[0])
	}
	if img.BitAt(8, 8) != On {
		t.Error("BitAt(8, 8) should be On")
	}
	if img.BitAt(0, 0) != Off {
		t.Error("BitAt(0, 0) is outside the offset rect and should be Off")
	}
}

func TestHorizontalLSBInterfaces(t *testing.T) {
	img := NewHorizontalLSB(image.Rect(0, 0, 8, 1))
	if img.ColorModel() != BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
	if img.Bounds() != image.Rect(0, 0, 8, 1) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
	img.SetBit(3, 0, On)
	if c := img.At(3, 0); c != On {
		t.Errorf("At(3, 0) = %v, want On", c)
	}
}
