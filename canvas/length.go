package canvas

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	ptPerInch = 72.0
	mmPerInch = 25.4
	cmPerInch = 2.54
)

// RefDPI is the reference display resolution used when converting between
// pixels and physical units without an explicit dpi.
const RefDPI = 96.0

// Length is a physical length. It is stored internally in points so that
// chained unit conversions always pass through a single canonical unit and
// do not accumulate rounding error.
type Length float64

func Pt(v float64) Length { return Length(v) }
func In(v float64) Length { return Length(v * ptPerInch) }
func MM(v float64) Length { return Length(v / mmPerInch * ptPerInch) }
func CM(v float64) Length { return Length(v / cmPerInch * ptPerInch) }

// Px converts a pixel count at the reference resolution of 96 dpi.
func Px(v float64) Length { return PxAt(v, RefDPI) }

// PxAt converts a pixel count at the given resolution.
func PxAt(v float64, dpi float64) Length { return Length(v / dpi * ptPerInch) }

func (l Length) Pt() float64 { return float64(l) }
func (l Length) In() float64 { return float64(l) / ptPerInch }
func (l Length) MM() float64 { return l.In() * mmPerInch }
func (l Length) CM() float64 { return l.In() * cmPerInch }
func (l Length) Px() float64 { return l.PxAt(RefDPI) }

// PxAt returns the length in fractional pixels at the given resolution.
func (l Length) PxAt(dpi float64) float64 { return l.In() * dpi }

// PxInt returns the length rounded to the nearest whole pixel at the given
// resolution.
func (l Length) PxInt(dpi float64) int { return int(math.Round(l.In() * dpi)) }

// Unit names a length unit accepted by ParseLength and Fmt.
type Unit string

const (
	UnitPt Unit = "pt"
	UnitIn Unit = "in"
	UnitCM Unit = "cm"
	UnitMM Unit = "mm"
	UnitPx Unit = "px"
)

// Units lists all known unit names.
var Units = []Unit{UnitPt, UnitIn, UnitCM, UnitMM, UnitPx}

// Val returns the numeric value of the length expressed in the given unit.
func (l Length) Val(u Unit) float64 {
	switch u {
	case UnitPt:
		return l.Pt()
	case UnitCM:
		return l.CM()
	case UnitMM:
		return l.MM()
	case UnitPx:
		return l.Px()
	default:
		return l.In()
	}
}

// Fmt renders the length as a number with a unit suffix, e.g. "25.4mm".
func (l Length) Fmt(u Unit) string {
	return fmt.Sprintf("%g%s", l.Val(u), u)
}

func (l Length) String() string { return l.Fmt(UnitPt) }

// ParseLength parses a length such as "12pt", "5in", "30mm", "2.5cm" or
// "96px". A bare number is taken to be inches. Pixels are converted at the
// reference 96 dpi.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	for _, u := range Units {
		if !strings.HasSuffix(s, string(u)) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, string(u)), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid length %q: %w", s, err)
		}
		switch u {
		case UnitPt:
			return Pt(v), nil
		case UnitIn:
			return In(v), nil
		case UnitCM:
			return CM(v), nil
		case UnitMM:
			return MM(v), nil
		case UnitPx:
			return Px(v), nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q: %w", s, err)
	}
	return In(v), nil
}
