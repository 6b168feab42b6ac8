package sharpmem

import "periph.io/x/conn/v3/spi"

// Model selects the target panel. Exactly one model must be passed to
// NewSPI via Opts; the zero value is rejected.
type Model uint8

// Supported panels. All listed models pack whole rows into whole bytes
// and have at most 240 rows, so a row address always fits a single byte.
const (
	// LS011B7DH03 is a 1.08" 160x68 panel.
	LS011B7DH03 Model = iota + 1
	// LS012B7DD06 is a 0.99" 240x240 round panel.
	LS012B7DD06
	// LS013B7DH05 is a 1.26" 144x168 panel.
	LS013B7DH05
	// LS027B7DH01 is a 2.7" 400x240 panel.
	LS027B7DH01
)

// geometry is the per-model lookup table. The SPI mode differs between
// models per their datasheets; the clock always idles low.
type geometry struct {
	w, h int
	mode spi.Mode
}

var geometries = map[Model]geometry{
	LS011B7DH03: {w: 160, h: 68, mode: spi.Mode0},
	LS012B7DD06: {w: 240, h: 240, mode: spi.Mode1},
	LS013B7DH05: {w: 144, h: 168, mode: spi.Mode1},
	LS027B7DH01: {w: 400, h: 240, mode: spi.Mode1},
}

func (m Model) String() string {
	switch m {
	case LS011B7DH03:
		return "LS011B7DH03"
	case LS012B7DD06:
		return "LS012B7DD06"
	case LS013B7DH05:
		return "LS013B7DH05"
	case LS027B7DH01:
		return "LS027B7DH01"
	default:
		return "Unknown"
	}
}
