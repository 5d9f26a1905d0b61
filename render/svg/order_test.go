package svg

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iand/pedigree/canvas"
	"github.com/iand/pedigree/layout"
	"github.com/iand/pedigree/model"
	"github.com/iand/pedigree/render/emf"
)

// orderGraph is a fixed four-person pedigree.
type orderGraph struct{}

func (orderGraph) Person(id string) (model.Person, bool) {
	people := map[string]model.Person{
		"root": {ID: "root", Name: "Ivy Stone", BirthYear: 1970},
		"f":    {ID: "f", Name: "Hal Stone", BirthYear: 1940},
		"m":    {ID: "m", Name: "Mae Brook", BirthYear: 1945},
		"ff":   {ID: "ff", Name: "Gus Stone", BirthYear: 1910},
	}
	p, ok := people[id]
	return p, ok
}

func (orderGraph) Father(id string) (string, bool) {
	f, ok := map[string]string{"root": "f", "f": "ff"}[id]
	return f, ok
}

func (orderGraph) Mother(id string) (string, bool) {
	m, ok := map[string]string{"root": "m"}[id]
	return m, ok
}

// svgPrimitives extracts the drawing element sequence from an SVG document.
func svgPrimitives(t *testing.T, doc []byte) []string {
	t.Helper()

	var prims []string
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("output is not well-formed xml: %v", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "rect":
			prims = append(prims, "rect")
		case "line", "polyline":
			prims = append(prims, "polyline")
		case "text":
			prims = append(prims, "text")
		}
	}
	return prims
}

// emfPrimitives extracts the drawing record sequence from an EMF document.
// A stroked box begins with a BeginPath record, lines are Polyline records
// and labels are ExtTextOutW records.
func emfPrimitives(t *testing.T, doc []byte) []string {
	t.Helper()

	var prims []string
	off := 0
	for off < len(doc) {
		if len(doc)-off < 8 {
			t.Fatalf("trailing bytes at offset %d", off)
		}
		size := int(binary.LittleEndian.Uint32(doc[off+4:]))
		if size < 8 || size%4 != 0 || off+size > len(doc) {
			t.Fatalf("record at offset %d has invalid size %d", off, size)
		}
		switch binary.LittleEndian.Uint32(doc[off:]) {
		case 0x3B: // begin path
			prims = append(prims, "rect")
		case 0x04: // polyline
			prims = append(prims, "polyline")
		case 0x54: // text out
			prims = append(prims, "text")
		}
		off += size
	}
	return prims
}

func TestPaintOrderMatchesAcrossFormats(t *testing.T) {
	ch, err := layout.Ancestors(orderGraph{}, "root", layout.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := canvas.New()
	ch.Paint(c)

	svgDoc, err := Render(c, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	emfDoc, err := emf.Render(c, emf.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svgPrims := svgPrimitives(t, svgDoc)
	emfPrims := emfPrimitives(t, emfDoc)

	// four boxes with two label lines each plus three connectors
	if len(svgPrims) != 15 {
		t.Errorf("got %d svg primitives, wanted 15", len(svgPrims))
	}
	if diff := cmp.Diff(svgPrims, emfPrims); diff != "" {
		t.Errorf("primitive order differs between formats (-svg +emf):\n%s", diff)
	}
}
