// Package canvas holds the format-agnostic drawing instructions shared by
// every chart renderer. A Canvas is an append-only, ordered sequence of
// instructions; insertion order is the paint order and every renderer must
// preserve it.
package canvas

import (
	"errors"
	"unicode/utf8"
)

// ErrUnsupportedInstruction is returned by a renderer given an instruction
// type it has no mapping for.
var ErrUnsupportedInstruction = errors.New("unsupported canvas instruction")

// CharWidthRatio approximates the width of one character as a fraction of
// the font size. No font metrics are available so text extents are a fixed
// width guess.
const CharWidthRatio = 0.5

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	Gray  = Color{R: 0xA0, G: 0xA0, B: 0xA0}
)

// Point is a position in logical units.
type Point struct {
	X, Y Length
}

// Instruction is one drawing command: Rect, Line, Polyline or Text.
type Instruction interface {
	// Extent is the bounding box of the instruction including stroke width.
	Extent() Bounds
}

// Bounds is an axis-aligned bounding box in logical units.
type Bounds struct {
	X0, Y0, X1, Y1 Length
}

func (b Bounds) W() Length { return b.X1 - b.X0 }
func (b Bounds) H() Length { return b.Y1 - b.Y0 }

func (b Bounds) union(o Bounds) Bounds {
	if o.X0 < b.X0 {
		b.X0 = o.X0
	}
	if o.Y0 < b.Y0 {
		b.Y0 = o.Y0
	}
	if o.X1 > b.X1 {
		b.X1 = o.X1
	}
	if o.Y1 > b.Y1 {
		b.Y1 = o.Y1
	}
	return b
}

func (b Bounds) grow(by Length) Bounds {
	return Bounds{X0: b.X0 - by, Y0: b.Y0 - by, X1: b.X1 + by, Y1: b.Y1 + by}
}

// Rect is a stroked, unfilled rectangle.
type Rect struct {
	X0, Y0, X1, Y1 Length
	StrokeWidth    Length
	Stroke         Color
}

func (r Rect) Extent() Bounds {
	return Bounds{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}.grow(r.StrokeWidth / 2)
}

// Line is a single straight stroke.
type Line struct {
	X0, Y0, X1, Y1 Length
	StrokeWidth    Length
	Stroke         Color
}

func (l Line) Extent() Bounds {
	b := Bounds{X0: min(l.X0, l.X1), Y0: min(l.Y0, l.Y1), X1: max(l.X0, l.X1), Y1: max(l.Y0, l.Y1)}
	return b.grow(l.StrokeWidth / 2)
}

// Polyline is a connected sequence of straight strokes.
type Polyline struct {
	Points      []Point
	StrokeWidth Length
	Stroke      Color
}

func (p Polyline) Extent() Bounds {
	var b Bounds
	for i, pt := range p.Points {
		if i == 0 {
			b = Bounds{X0: pt.X, Y0: pt.Y, X1: pt.X, Y1: pt.Y}
			continue
		}
		b = b.union(Bounds{X0: pt.X, Y0: pt.Y, X1: pt.X, Y1: pt.Y})
	}
	return b.grow(p.StrokeWidth / 2)
}

// Text is a single line of text centered horizontally on X with its
// baseline at Y.
type Text struct {
	X, Y     Length
	Value    string
	FontSize Length
	Color    Color
}

func (t Text) Extent() Bounds {
	w := t.FontSize * Length(CharWidthRatio*float64(utf8.RuneCountInString(t.Value)))
	return Bounds{X0: t.X - w/2, Y0: t.Y - t.FontSize, X1: t.X + w/2, Y1: t.Y}
}

// Canvas accumulates drawing instructions in paint order. Once sealed it is
// read-only and can be handed to a renderer.
type Canvas struct {
	instrs []Instruction
	bounds Bounds
	drawn  bool
	sealed bool
}

func New() *Canvas {
	return &Canvas{}
}

// Add appends an instruction. Adding to a sealed canvas is a programming
// error and panics.
func (c *Canvas) Add(in Instruction) {
	if c.sealed {
		panic("canvas: Add called after Seal")
	}
	c.instrs = append(c.instrs, in)
	ext := in.Extent()
	if !c.drawn {
		c.bounds = ext
		c.drawn = true
		return
	}
	c.bounds = c.bounds.union(ext)
}

// Seal marks the canvas read-only. Sealing twice is harmless.
func (c *Canvas) Seal() {
	c.sealed = true
}

func (c *Canvas) Sealed() bool { return c.sealed }

func (c *Canvas) Len() int { return len(c.instrs) }

// Instructions returns the instruction sequence in paint order. Callers
// must not modify the returned slice.
func (c *Canvas) Instructions() []Instruction { return c.instrs }

// Bounds is the union of every instruction's extent. It is the degenerate
// point at the origin while the canvas is empty.
func (c *Canvas) Bounds() Bounds { return c.bounds }
