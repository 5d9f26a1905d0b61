// Package emf serializes a canvas instruction stream as an enhanced
// metafile (EMF). Only the record subset needed for boxes, connecting
// lines and labeled text is implemented, but the emitted structure is
// strict: record sizes, the handle table and the header aggregates must
// agree exactly with the bytes written because conforming readers validate
// them.
package emf

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf16"

	"github.com/iand/pedigree/canvas"
)

// ErrFinalized is returned when a primitive is added to an encoder that has
// already been finalized, or when Close is called twice.
var ErrFinalized = errors.New("emf: encoder already finalized")

// MaxTextLen is the longest text run the encoder will emit, in UTF-16
// code units. Longer runs are truncated with a warning.
const MaxTextLen = 8192

const fontFace = "Times New Roman"

// description is embedded in the file header, identifying the generator.
const description = "pedigree"

type Options struct {
	DPI float64 // device resolution, defaults to 300
}

type state int

const (
	stateEmpty state = iota
	stateRecording
	stateFinalized
)

// Encoder builds an EMF document incrementally. Records are buffered until
// Close because the header precedes data it depends on: the bounding box,
// record count, handle count and total size are only known once every
// record exists, so a single streaming pass cannot produce the file.
type Encoder struct {
	state  state
	dpi    float64
	width  canvas.Length // frame size for the header
	height canvas.Length

	records []record
	handles map[string]uint32 // style identity to object handle

	curPen  uint32
	curFont uint32

	bkMode       uint32
	bkModeSet    bool
	textAlign    uint32
	textAlignSet bool
	textColor    uint32
	textColorSet bool

	drawn                  bool // whether any geometry has been emitted
	minX, minY, maxX, maxY int  // running bounding box in device units
}

// NewEncoder returns an encoder for a document with the given frame size.
func NewEncoder(width, height canvas.Length, o Options) *Encoder {
	dpi := o.DPI
	if dpi <= 0 {
		dpi = 300
	}
	return &Encoder{
		dpi:     dpi,
		width:   width,
		height:  height,
		handles: make(map[string]uint32),
	}
}

// Render encodes a canvas as a complete EMF document.
func Render(c *canvas.Canvas, o Options) ([]byte, error) {
	c.Seal()
	b := c.Bounds()
	enc := NewEncoder(b.W(), b.H(), o)
	for _, in := range c.Instructions() {
		if err := enc.Add(in); err != nil {
			return nil, err
		}
	}
	return enc.Close()
}

// Add translates one canvas instruction into metafile records.
func (e *Encoder) Add(in canvas.Instruction) error {
	switch e.state {
	case stateFinalized:
		return ErrFinalized
	case stateEmpty:
		e.state = stateRecording
		e.setBkMode(bkTransparent)
	}

	switch t := in.(type) {
	case canvas.Rect:
		e.rectangle(t)
	case canvas.Line:
		e.polyline([]canvas.Point{{X: t.X0, Y: t.Y0}, {X: t.X1, Y: t.Y1}}, t.StrokeWidth, t.Stroke)
	case canvas.Polyline:
		e.polyline(t.Points, t.StrokeWidth, t.Stroke)
	case canvas.Text:
		e.text(t)
	default:
		return fmt.Errorf("%T: %w", in, canvas.ErrUnsupportedInstruction)
	}
	return nil
}

// Close finalizes the document and returns its bytes. An encoder that was
// never drawn to produces a minimal valid document of header and EOF only.
func (e *Encoder) Close() ([]byte, error) {
	if e.state == stateFinalized {
		return nil, ErrFinalized
	}
	e.state = stateFinalized

	if e.curPen != 0 {
		e.selectObject(stockNullPen)
	}
	if e.curFont != 0 {
		e.selectObject(stockDeviceDefaultFont)
	}
	for h := uint32(1); h <= uint32(len(e.handles)); h++ {
		e.records = append(e.records, mkrec(emrDeleteObject, buf{}.u32(h)))
	}
	e.records = append(e.records, eofRecord())

	recSize := 0
	for _, r := range e.records {
		recSize += len(r)
	}
	// record count includes the header itself
	hdr := e.header(len(e.records)+1, recSize)

	out := make([]byte, 0, len(hdr)+recSize)
	out = append(out, hdr...)
	for _, r := range e.records {
		out = append(out, r...)
	}
	return out, nil
}

func (e *Encoder) px(l canvas.Length) int { return l.PxInt(e.dpi) }

func colorref(c canvas.Color) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

// grow extends the running bounding box by the device extent of a
// primitive, widened by half the stroke width for stroked geometry.
func (e *Encoder) grow(left, top, right, bottom int, stroke canvas.Length) {
	if stroke > 0 {
		half := int(math.Ceil(stroke.PxAt(e.dpi) / 2))
		left -= half
		top -= half
		right += half
		bottom += half
	}
	if !e.drawn {
		e.minX, e.minY, e.maxX, e.maxY = left, top, right, bottom
		e.drawn = true
		return
	}
	e.minX = min(e.minX, left)
	e.minY = min(e.minY, top)
	e.maxX = max(e.maxX, right)
	e.maxY = max(e.maxY, bottom)
}

// ensurePen creates a pen object for the style the first time it is seen
// and selects it if it is not the current pen. Identical styles share one
// handle.
func (e *Encoder) ensurePen(width canvas.Length, col canvas.Color) {
	wpx := int(math.Ceil(width.PxAt(e.dpi)))
	if wpx < 1 {
		wpx = 1
	}
	key := fmt.Sprintf("pen/%d/%06x", wpx, colorref(col))
	h, ok := e.handles[key]
	if !ok {
		h = uint32(len(e.handles) + 1)
		e.handles[key] = h
		p := buf{}.u32(h).u32(0).u32(0).u32(0).u32(0) // handle, no brush bitmap
		p = p.u32(psSolid | psGeometric).u32(uint32(wpx)).u32(0).u32(colorref(col)).u32(6).u32(0).u32(0)
		e.records = append(e.records, mkrec(emrExtCreatePen, p))
	}
	if e.curPen != h {
		e.selectObject(h)
		e.curPen = h
	}
}

// ensureFont creates and selects a font object, reusing the handle for
// repeated sizes.
func (e *Encoder) ensureFont(size canvas.Length) {
	hpx := size.PxInt(e.dpi)
	key := fmt.Sprintf("font/%d/%s", hpx, fontFace)
	h, ok := e.handles[key]
	if !ok {
		h = uint32(len(e.handles) + 1)
		e.handles[key] = h
		p := buf{}.u32(h)
		p = p.i32(-hpx).i32(0)         // height (negative to match on character height), width
		p = p.i32(0).i32(0).i32(400)   // escapement, orientation, weight
		p = p.bytes([]byte{0, 0, 0, 1}) // italic, underline, strikeout, charset
		p = p.bytes([]byte{0, 0, 0, 0}) // out/clip precision, quality, pitch
		p = p.bytes(utf16Bytes(fontFace, 64))
		e.records = append(e.records, mkrec(emrExtCreateFontIndirectW, p))
	}
	if e.curFont != h {
		e.selectObject(h)
		e.curFont = h
	}
}

func (e *Encoder) selectObject(h uint32) {
	e.records = append(e.records, mkrec(emrSelectObject, buf{}.u32(h)))
}

func (e *Encoder) setBkMode(m uint32) {
	if e.bkModeSet && e.bkMode == m {
		return
	}
	e.bkMode, e.bkModeSet = m, true
	e.records = append(e.records, mkrec(emrSetBkMode, buf{}.u32(m)))
}

func (e *Encoder) setTextAlign(a uint32) {
	if e.textAlignSet && e.textAlign == a {
		return
	}
	e.textAlign, e.textAlignSet = a, true
	e.records = append(e.records, mkrec(emrSetTextAlign, buf{}.u32(a)))
}

func (e *Encoder) setTextColor(c uint32) {
	if e.textColorSet && e.textColor == c {
		return
	}
	e.textColor, e.textColorSet = c, true
	e.records = append(e.records, mkrec(emrSetTextColor, buf{}.u32(c)))
}

// rectangle strokes a box outline as a path bracket.
func (e *Encoder) rectangle(r canvas.Rect) {
	e.ensurePen(r.StrokeWidth, r.Stroke)

	left, top := e.px(r.X0), e.px(r.Y0)
	right, bottom := e.px(r.X1), e.px(r.Y1)
	e.records = append(e.records,
		mkrec(emrBeginPath, nil),
		mkrec(emrMoveToEx, buf{}.i32(left).i32(top)),
		mkrec(emrLineTo, buf{}.i32(right).i32(top)),
		mkrec(emrLineTo, buf{}.i32(right).i32(bottom)),
		mkrec(emrLineTo, buf{}.i32(left).i32(bottom)),
		mkrec(emrCloseFigure, nil),
		mkrec(emrEndPath, nil),
		mkrec(emrStrokePath, buf{}.i32(0).i32(0).i32(-1).i32(-1)),
	)
	e.grow(left, top, right, bottom, r.StrokeWidth)
}

func (e *Encoder) polyline(pts []canvas.Point, width canvas.Length, col canvas.Color) {
	if len(pts) < 2 {
		return
	}
	e.ensurePen(width, col)

	left, top := e.px(pts[0].X), e.px(pts[0].Y)
	right, bottom := left, top
	coords := make([][2]int, len(pts))
	for i, pt := range pts {
		x, y := e.px(pt.X), e.px(pt.Y)
		coords[i] = [2]int{x, y}
		left = min(left, x)
		top = min(top, y)
		right = max(right, x)
		bottom = max(bottom, y)
	}

	p := buf{}.i32(left).i32(top).i32(right).i32(bottom)
	p = p.u32(uint32(len(coords)))
	for _, c := range coords {
		p = p.i32(c[0]).i32(c[1])
	}
	e.records = append(e.records, mkrec(emrPolyline, p))
	e.grow(left, top, right, bottom, width)
}

func (e *Encoder) text(t canvas.Text) {
	e.setTextAlign(taCenter | taBaseline)
	e.setTextColor(colorref(t.Color))
	e.ensureFont(t.FontSize)

	u := utf16.Encode([]rune(t.Value))
	if len(u) > MaxTextLen {
		slog.Warn("text run exceeds metafile limit, truncating", "chars", len(u), "max", MaxTextLen)
		u = u[:MaxTextLen]
	}
	txt := make([]byte, len(u)*2)
	for i, v := range u {
		txt[i*2] = byte(v)
		txt[i*2+1] = byte(v >> 8)
	}

	x, y := e.px(t.X), e.px(t.Y)
	p := buf{}.i32(0).i32(0).i32(-1).i32(-1) // bounds, not used
	p = p.u32(gmCompatible)
	p = p.f32(1).f32(1) // x and y scale
	p = p.i32(x).i32(y)
	p = p.u32(uint32(len(u)))
	p = p.u32(76) // offset of the string from the record start
	p = p.u32(0)  // options
	p = p.i32(0).i32(0).i32(-1).i32(-1) // clipping rectangle, not used
	p = p.u32(0)                        // no inter-character spacing array
	p = p.bytes(txt)
	e.records = append(e.records, mkrec(emrExtTextOutW, p))

	// approximate extent: fixed per-character width, one line of height
	w := int(math.Ceil(t.FontSize.PxAt(e.dpi) * canvas.CharWidthRatio * float64(len(u))))
	h := int(math.Ceil(t.FontSize.PxAt(e.dpi)))
	e.grow(x-w/2, y-h, x+w/2, y, 0)
}

// header builds the file header record. nRec counts every record in the
// file including the header and EOF; recSize is the byte size of all
// records after the header.
func (e *Encoder) header(nRec, recSize int) record {
	var bl, bt, br, bb int
	if e.drawn {
		bl, bt, br, bb = e.minX, e.minY, e.maxX, e.maxY
	}
	devX := int(math.Ceil(e.width.PxAt(e.dpi)))
	devY := int(math.Ceil(e.height.PxAt(e.dpi)))
	mmX := int(math.Ceil(e.width.MM()))
	mmY := int(math.Ceil(e.height.MM()))

	p := buf{}.i32(bl).i32(bt).i32(br).i32(bb)     // bounds in device units
	p = p.i32(0).i32(0).i32(mmX * 100).i32(mmY * 100) // frame in 0.01mm units
	p = p.bytes([]byte(" EMF"))
	p = p.u32(0x00010000)                  // version
	p = p.u32(uint32(headerSize + recSize)) // total file size
	p = p.u32(uint32(nRec))
	p = p.u16(uint16(len(e.handles) + 1)).u16(0) // handle count, reserved
	p = p.u32(uint32(len(description))).u32(108).u32(0) // description length and offset, no palette
	p = p.i32(devX).i32(devY)
	p = p.i32(mmX).i32(mmY)
	p = p.u32(0).u32(0).u32(0) // no pixel format, no OpenGL
	p = p.u32(uint32(mmX * 1000)).u32(uint32(mmY * 1000))
	p = p.bytes(utf16Bytes(description, 16))
	return mkrec(emrHeader, p)
}
