// Package sharpmem controls a Sharp Memory LCD panel via SPI.
//
// Memory LCDs are monochrome (1 bit per pixel) memory-in-pixel panels:
// every pixel cell retains its own state, so the host only ever transmits
// the rows that changed. This driver implements the display.Drawer
// interface from periph.io.
//
// # Display Characteristics
//
// - 1-bit black and white, no grayscale
// - Pixel memory inside the panel; partial (per-row) updates
// - Very low power: static images cost almost nothing to hold
// - Requires periodic VCOM polarity alternation (see below)
//
// # Supported Models
//
//	Model         Resolution
//	LS011B7DH03   160x68
//	LS012B7DD06   240x240
//	LS013B7DH05   144x168
//	LS027B7DH01   400x240
//
// Exactly one model is selected through Opts.Model at construction.
//
// # Hardware Connection
//
// Connect the panel to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VIN         → 3.3V or 5V depending on the breakout
//	CLK         → SPI Clock (SCLK)
//	DI          → SPI Data (MOSI)
//	CS          → GPIO (any available pin)
//	DISP        → Optional: GPIO for display enable
//
// The chip select of this panel family is active HIGH, the opposite of
// regular SPI devices. The driver therefore opens the port with spi.NoCS
// and toggles a plain GPIO pin itself around every transaction; do not
// route CS to the controller's hardware chip select.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/sharpmem"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		// Open SPI bus
//		spiBus, err := spireg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Chip select and display enable GPIO pins
//		csPin := gpioreg.ByName("GPIO25")
//		dispPin := gpioreg.ByName("GPIO24")
//
//		// Create device
//		dev, err := sharpmem.NewSPI(spiBus, csPin, dispPin, &sharpmem.Opts{
//			Model: sharpmem.LS027B7DH01,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//		dev.Enable()
//
//		// Draw a diagonal line and push it to the panel
//		for i := 0; i < 240; i++ {
//			dev.SetPixel(i, i, true)
//		}
//		if err := dev.Flush(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Drawing
//
// Three levels of drawing API are available:
//
// SetPixel/Clear mutate the in-memory buffer directly and report
// out-of-range coordinates as an error. Nothing reaches the panel until
// Flush is called.
//
// Write accepts a full packed frame in image1bit.HorizontalLSB layout and
// transmits only the rows that differ from the current buffer.
//
// Draw accepts any image.Image, clips it to the panel bounds, converts
// colors through image1bit.BitModel and row-diffs the result. By default
// Draw only stages changes; set Opts.AutoFlush to push them immediately.
//
// # VCOM Polarity Refresh
//
// The panel's liquid crystal is damaged by a DC bias if the drive
// polarity stays static: the datasheets require the VCOM bit to alternate
// at least about once per second. Every transaction the driver sends
// carries the current polarity and flips it afterwards, so a steady
// stream of Flush calls is sufficient. When the image is static, either
// keep calling Flush (an idle flush sends a two byte maintenance
// transaction once Opts.RefreshInterval elapsed, and nothing otherwise)
// or drive RefreshPolarity from a ticker:
//
//	t := time.NewTicker(time.Second)
//	defer t.Stop()
//	for range t.C {
//		if err := dev.RefreshPolarity(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// This is an operational contract with the caller: the driver cannot
// alternate polarity on its own because it never spawns goroutines.
//
// # Error Handling
//
// Out-of-range coordinates on the low-level pixel API return
// ErrOutOfBounds; the Draw path clips silently instead, matching the
// tolerance expected from a graphics surface. SPI and GPIO failures are
// returned to the caller unchanged and are never retried internally; a
// failed Flush leaves all pending rows marked dirty so a retry resends
// exactly what the panel is still missing.
//
// # Datasheet
//
// For protocol and timing details, see for example:
// https://www.sharpsde.com/fileadmin/products/Displays/2016_SDE_App_Note_for_Memory_LCD_programming_V1.3.pdf
package sharpmem
