// Package sharpmem controls a Sharp Memory LCD panel via SPI.
//
// Memory LCDs are monochrome memory-in-pixel panels: every pixel cell
// retains its state, so the host only transmits the rows that changed.
//
// See the package documentation in doc.go and the examples for how to use
// this package.
package sharpmem

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/sharpmem/image1bit"
)

// Command bits. The panel reads the command byte least significant bit
// first; the SPI connection is opened with spi.LSBFirst so these are the
// values handed to the bus untouched. All remaining bits are zero.
const (
	cmdUpdate byte = 0x01 // line update follows
	cmdVcom   byte = 0x02 // VCOM polarity
	cmdClear  byte = 0x04 // clear all pixels
)

// ErrOutOfBounds is returned by SetPixel, Pixel and RowBytes when a
// coordinate lies outside the panel geometry.
var ErrOutOfBounds = errors.New("sharpmem: coordinate out of bounds")

// DefaultRefreshInterval is the fallback VCOM refresh interval. The panel
// requires the VCOM polarity to alternate at least every couple of
// seconds; one second keeps a comfortable margin.
const DefaultRefreshInterval = time.Second

// Opts is the configuration for the Memory LCD.
type Opts struct {
	// Model selects the panel geometry and SPI mode. Required.
	Model Model

	// AutoFlush makes Draw push changed rows to the panel immediately.
	// When false (the default), Draw only mutates the in-memory buffer
	// and the caller decides when to Flush.
	AutoFlush bool

	// InvertColors swaps the on/off mapping applied to colors by Draw.
	InvertColors bool

	// RefreshInterval is the maximum time Flush lets the VCOM polarity
	// stay static before issuing a maintenance transaction on an
	// otherwise idle flush. Zero selects DefaultRefreshInterval; a
	// negative value disables idle refresh entirely, in which case the
	// caller must drive RefreshPolarity from its own timer.
	RefreshInterval time.Duration
}

// Dev is the device handle for a Sharp Memory LCD.
//
// The handle is not safe for concurrent use; callers needing concurrency
// must serialize access externally. After construction no allocations are
// performed.
type Dev struct {
	// Communication
	c    conn.Conn   // SPI connection
	cs   gpio.PinOut // Chip select, active high, owned by the driver
	disp gpio.PinOut // Display enable pin (optional, nil if not wired)

	// Display geometry
	model       Model
	rect        image.Rectangle
	bytesPerRow int

	// Pixel state
	buffer       []byte
	next         *image1bit.HorizontalLSB // double buffer for Draw
	dirty        []byte                   // bitfield, one bit per row
	pendingClear bool

	// Transmit buffer, sized for a worst-case full-frame update.
	tx []byte

	// VCOM maintenance
	vcom            bool
	lastTxn         time.Time
	refreshInterval time.Duration
	now             func() time.Time

	// Policy
	autoFlush bool
	invert    bool

	halted bool
}

// NewSPI creates a Memory LCD device connected via SPI.
//
// The chip select line of this panel family is active high, unlike
// regular SPI devices, so the port is connected with spi.NoCS and the
// driver toggles cs itself around every transaction. The port is
// configured for 2MHz, LSB-first bit order and the SPI mode matching the
// selected model.
//
// disp is the panel's display enable pin. Pass nil if it is hardwired.
// The pin is driven low during construction; call Enable to turn the
// panel output on.
//
// Construction transmits a clear-all command so the panel starts from a
// known blank state.
func NewSPI(p spi.Port, cs gpio.PinOut, disp gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		return nil, errors.New("sharpmem: opts with a panel model are required")
	}
	g, ok := geometries[opts.Model]
	if !ok {
		return nil, fmt.Errorf("sharpmem: no panel model selected (got %s)", opts.Model)
	}
	if cs == nil {
		return nil, errors.New("sharpmem: chip select pin is required")
	}

	if err := cs.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("sharpmem: failed to release CS: %w", err)
	}
	if disp != nil {
		if err := disp.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("sharpmem: failed to pull DISP low: %w", err)
		}
	}

	c, err := p.Connect(2*physic.MegaHertz, g.mode|spi.NoCS|spi.LSBFirst, 8)
	if err != nil {
		return nil, err
	}

	return newDev(c, cs, disp, opts, g)
}

// newDev is the common construction code, independent of the SPI port
// setup.
func newDev(c conn.Conn, cs gpio.PinOut, disp gpio.PinOut, opts *Opts, g geometry) (*Dev, error) {
	bytesPerRow := (g.w + 7) / 8
	refresh := opts.RefreshInterval
	if refresh == 0 {
		refresh = DefaultRefreshInterval
	}

	d := &Dev{
		c:               c,
		cs:              cs,
		disp:            disp,
		model:           opts.Model,
		rect:            image.Rect(0, 0, g.w, g.h),
		bytesPerRow:     bytesPerRow,
		buffer:          make([]byte, bytesPerRow*g.h),
		next:            image1bit.NewHorizontalLSB(image.Rect(0, 0, g.w, g.h)),
		dirty:           make([]byte, (g.h+7)/8),
		tx:              make([]byte, 0, g.h*(bytesPerRow+3)+1),
		vcom:            true,
		refreshInterval: refresh,
		now:             time.Now,
		autoFlush:       opts.AutoFlush,
		invert:          opts.InvertColors,
	}

	// Known blank state before the first draw.
	if err := d.clearDisplay(); err != nil {
		return nil, err
	}
	return d, nil
}

// Width returns the panel width in pixels.
func (d *Dev) Width() int {
	return d.rect.Dx()
}

// Height returns the panel height in pixels.
func (d *Dev) Height() int {
	return d.rect.Dy()
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("sharpmem.Dev{%s, %dx%d}", d.model, d.rect.Dx(), d.rect.Dy())
}

// SetPixel sets the pixel at (x, y) in the in-memory buffer and marks its
// row for transmission on the next Flush. It fails with ErrOutOfBounds
// for coordinates outside the panel geometry.
//
// Setting a pixel to the value it already holds skips the dirty mark.
func (d *Dev) SetPixel(x, y int, on bool) error {
	if x < 0 || y < 0 || x >= d.rect.Dx() || y >= d.rect.Dy() {
		return ErrOutOfBounds
	}

	offset := y*d.bytesPerRow + x/8
	mask := byte(1) << uint(x&7)

	if on == (d.buffer[offset]&mask != 0) {
		return nil
	}
	if on {
		d.buffer[offset] |= mask
	} else {
		d.buffer[offset] &^= mask
	}
	d.markDirty(y)
	return nil
}

// Pixel reads the pixel at (x, y) from the in-memory buffer.
func (d *Dev) Pixel(x, y int) (bool, error) {
	if x < 0 || y < 0 || x >= d.rect.Dx() || y >= d.rect.Dy() {
		return false, ErrOutOfBounds
	}
	return d.buffer[y*d.bytesPerRow+x/8]&(1<<uint(x&7)) != 0, nil
}

// Clear sets every pixel in the buffer to a uniform value and schedules
// the panel's dedicated clear-all command for the next Flush, which is a
// single two byte transaction regardless of panel size. Row-level dirty
// state accumulated before the call is dropped; it is superseded by the
// clear.
func (d *Dev) Clear(on bool) {
	fill := byte(0x00)
	if on {
		fill = 0xFF
	}
	for i := range d.buffer {
		d.buffer[i] = fill
	}
	d.pendingClear = true
	d.clearDirty()
}

// RowBytes returns a read-only view of one row's packed pixel bytes. The
// slice aliases the internal buffer and must not be modified or retained
// across mutations.
func (d *Dev) RowBytes(y int) ([]byte, error) {
	if y < 0 || y >= d.rect.Dy() {
		return nil, ErrOutOfBounds
	}
	start := y * d.bytesPerRow
	return d.buffer[start : start+d.bytesPerRow : start+d.bytesPerRow], nil
}

// Flush pushes pending changes to the panel as at most one chip-select
// delimited transaction:
//
//   - a pending Clear becomes a clear-all command,
//   - otherwise all dirty rows are batched into one line-update
//     transaction in ascending row order,
//   - otherwise, if the VCOM refresh interval elapsed, a polarity
//     maintenance command is sent; if not, no I/O happens at all.
//
// The VCOM bit alternates after every successful transaction. On a
// transport error the pending state is left untouched, so retrying Flush
// resends exactly what still needs to reach the panel.
func (d *Dev) Flush() error {
	if d.halted {
		return errors.New("sharpmem: halted")
	}
	if d.pendingClear {
		return d.clearDisplay()
	}
	if !d.anyDirty() {
		if d.refreshInterval > 0 && d.now().Sub(d.lastTxn) >= d.refreshInterval {
			return d.RefreshPolarity()
		}
		return nil
	}
	return d.flushLines()
}

// RefreshPolarity transmits a VCOM-only transaction, alternating the
// panel's drive polarity without touching pixel data.
//
// The panel's analog backplane is damaged by a static polarity; callers
// that stop drawing for extended periods must keep calling Flush or
// RefreshPolarity periodically. Wire this to a ticker when the display is
// mostly idle.
func (d *Dev) RefreshPolarity() error {
	if d.halted {
		return errors.New("sharpmem: halted")
	}
	return d.txn(append(d.tx[:0], d.vcomBit(), 0x00))
}

// flushLines transmits every dirty row in one transaction.
func (d *Dev) flushLines() error {
	cmd := cmdUpdate | d.vcomBit()
	buf := d.tx[:0]
	for y := 0; y < d.rect.Dy(); y++ {
		if !d.rowDirty(y) {
			continue
		}
		// Command byte, 1-indexed row address, packed row data, row
		// terminator. The command bits only matter for the first row;
		// the panel treats them as dummy bits on subsequent rows.
		buf = append(buf, cmd, byte(y+1))
		start := y * d.bytesPerRow
		buf = append(buf, d.buffer[start:start+d.bytesPerRow]...)
		buf = append(buf, 0x00)
	}
	// Final trailer closing the frame.
	buf = append(buf, 0x00)

	if err := d.txn(buf); err != nil {
		return err
	}
	d.clearDirty()
	return nil
}

// clearDisplay transmits the clear-all command.
func (d *Dev) clearDisplay() error {
	if err := d.txn(append(d.tx[:0], cmdClear|d.vcomBit(), 0x00)); err != nil {
		return err
	}
	d.pendingClear = false
	return nil
}

// txn performs one chip-select delimited transfer: assert, transmit,
// deassert. The VCOM polarity flips only once the whole sequence
// succeeded; the panel latches the data on the falling CS edge.
func (d *Dev) txn(b []byte) error {
	if err := d.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("sharpmem: failed to assert CS: %w", err)
	}
	err := d.c.Tx(b, nil)
	if csErr := d.cs.Out(gpio.Low); csErr != nil && err == nil {
		err = fmt.Errorf("sharpmem: failed to release CS: %w", csErr)
	}
	if err != nil {
		return err
	}
	d.vcom = !d.vcom
	d.lastTxn = d.now()
	return nil
}

func (d *Dev) vcomBit() byte {
	if d.vcom {
		return cmdVcom
	}
	return 0
}

func (d *Dev) markDirty(y int) {
	d.dirty[y/8] |= 1 << uint(y&7)
}

func (d *Dev) rowDirty(y int) bool {
	return d.dirty[y/8]&(1<<uint(y&7)) != 0
}

func (d *Dev) anyDirty() bool {
	for _, b := range d.dirty {
		if b != 0 {
			return true
		}
	}
	return false
}

func (d *Dev) clearDirty() {
	for i := range d.dirty {
		d.dirty[i] = 0
	}
}

// Draw implements display.Drawer.
//
// Pixels outside the panel bounds are silently clipped. Changed rows are
// detected against the current buffer and marked for transmission; the
// panel itself is only updated when Opts.AutoFlush is set, otherwise the
// caller flushes explicitly.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("sharpmem: halted")
	}

	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}

	// Render into the double buffer, then promote changed rows.
	copy(d.next.Pix, d.buffer)
	draw.Src.Draw(d.next, r, src, sp)
	if d.invert {
		invertRegion(d.next, r)
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := y * d.bytesPerRow
		row := d.buffer[start : start+d.bytesPerRow]
		rendered := d.next.Pix[start : start+d.bytesPerRow]
		if bytes.Equal(row, rendered) {
			continue
		}
		copy(row, rendered)
		d.markDirty(y)
	}

	if d.autoFlush {
		return d.Flush()
	}
	return nil
}

// Write writes a full frame of packed pixels in HorizontalLSB format and
// pushes the rows that differ from the current buffer to the panel. The
// data must be exactly ceil(width/8) * height bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("sharpmem: halted")
	}
	if len(pixels) != len(d.buffer) {
		return 0, errors.New("sharpmem: invalid buffer size")
	}

	for y := 0; y < d.rect.Dy(); y++ {
		start := y * d.bytesPerRow
		row := d.buffer[start : start+d.bytesPerRow]
		incoming := pixels[start : start+d.bytesPerRow]
		if bytes.Equal(row, incoming) {
			continue
		}
		copy(row, incoming)
		d.markDirty(y)
	}

	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Enable drives the display enable pin high, turning the panel output on.
// It is a no-op when no DISP pin was provided.
func (d *Dev) Enable() error {
	if d.disp == nil {
		return nil
	}
	if err := d.disp.Out(gpio.High); err != nil {
		return fmt.Errorf("sharpmem: failed to pull DISP high: %w", err)
	}
	return nil
}

// Disable drives the display enable pin low, blanking the panel output.
// Pixel memory is retained.
func (d *Dev) Disable() error {
	if d.disp == nil {
		return nil
	}
	if err := d.disp.Out(gpio.Low); err != nil {
		return fmt.Errorf("sharpmem: failed to pull DISP low: %w", err)
	}
	return nil
}

// Halt blanks the panel and stops the handle. After calling Halt the
// device will not accept further drawing operations until it is
// re-created.
func (d *Dev) Halt() error {
	if err := d.Disable(); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// invertRegion flips every bit inside r, applying the swapped on/off
// mapping requested via Opts.InvertColors.
func invertRegion(img *image1bit.HorizontalLSB, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetBit(x, y, !img.BitAt(x, y))
		}
	}
}

var _ display.Drawer = &Dev{}
