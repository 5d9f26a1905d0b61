// Package svg serializes a canvas instruction stream as an SVG document.
// Only the primitive subset needed for box-and-connector charts is
// implemented.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/iand/pedigree/canvas"
)

const xmlHeader = "<?xml version=\"1.0\" standalone=\"no\"?>\n" +
	"<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" " +
	"\"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n"

type Options struct {
	Unit    canvas.Unit // unit for the document size and all coordinates
	FullXML bool        // emit the XML declaration and doctype
}

func DefaultOptions() Options {
	return Options{Unit: canvas.UnitIn, FullXML: true}
}

// Render writes the canvas as a complete SVG document. Elements appear in
// instruction order. The document size and viewBox derive from the canvas
// bounding box and every coordinate is expressed in o.Unit.
func Render(c *canvas.Canvas, o Options) ([]byte, error) {
	if o.Unit == "" {
		o.Unit = canvas.UnitIn
	}
	c.Seal()

	b := &bytes.Buffer{}
	if o.FullXML {
		io.WriteString(b, xmlHeader)
	}

	bounds := c.Bounds()
	fmt.Fprintf(b, "<svg width=\"%s\" height=\"%s\" viewBox=\"%g %g %g %g\" version=\"1.1\" xmlns=\"http://www.w3.org/2000/svg\">\n",
		bounds.W().Fmt(o.Unit), bounds.H().Fmt(o.Unit),
		bounds.X0.Val(o.Unit), bounds.Y0.Val(o.Unit),
		bounds.W().Val(o.Unit), bounds.H().Val(o.Unit))

	for _, in := range c.Instructions() {
		switch t := in.(type) {
		case canvas.Rect:
			fmt.Fprintf(b, "<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" style=\"fill:none;stroke-width:%g;stroke:%s\" />\n",
				t.X0.Val(o.Unit), t.Y0.Val(o.Unit),
				(t.X1 - t.X0).Val(o.Unit), (t.Y1 - t.Y0).Val(o.Unit),
				t.StrokeWidth.Val(o.Unit), hex(t.Stroke))
		case canvas.Line:
			fmt.Fprintf(b, "<line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" style=\"fill:none;stroke-width:%g;stroke:%s\" />\n",
				t.X0.Val(o.Unit), t.Y0.Val(o.Unit), t.X1.Val(o.Unit), t.Y1.Val(o.Unit),
				t.StrokeWidth.Val(o.Unit), hex(t.Stroke))
		case canvas.Polyline:
			fmt.Fprintf(b, "<polyline points=\"%s\" style=\"fill:none;stroke-width:%g;stroke:%s\" />\n",
				points(t.Points, o.Unit), t.StrokeWidth.Val(o.Unit), hex(t.Stroke))
		case canvas.Text:
			fmt.Fprintf(b, "<text x=\"%g\" y=\"%g\" font-size=\"%g\" text-anchor=\"middle\" fill=\"%s\">%s</text>\n",
				t.X.Val(o.Unit), t.Y.Val(o.Unit), t.FontSize.Val(o.Unit), hex(t.Color), escape(t.Value))
		default:
			return nil, fmt.Errorf("%T: %w", in, canvas.ErrUnsupportedInstruction)
		}
	}

	io.WriteString(b, "</svg>\n")
	return b.Bytes(), nil
}

func points(pts []canvas.Point, u canvas.Unit) string {
	b := &bytes.Buffer{}
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%g,%g", p.X.Val(u), p.Y.Val(u))
	}
	return b.String()
}

func hex(c canvas.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escape(s string) string {
	b := &bytes.Buffer{}
	if err := xml.EscapeText(b, []byte(s)); err != nil {
		panic(err)
	}
	return b.String()
}
