package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/iand/pedigree/canvas"
)

func testCanvas() *canvas.Canvas {
	c := canvas.New()
	c.Add(canvas.Rect{
		X0: canvas.In(0.5), Y0: canvas.In(0.5),
		X1: canvas.In(2.5), Y1: canvas.In(1.5),
		StrokeWidth: canvas.Pt(1),
		Stroke:      canvas.Black,
	})
	c.Add(canvas.Text{
		X: canvas.In(1.5), Y: canvas.In(1),
		Value:    "Ann & Bob <family>",
		FontSize: canvas.Pt(10),
		Color:    canvas.Black,
	})
	c.Add(canvas.Polyline{
		Points: []canvas.Point{
			{X: canvas.In(1.5), Y: canvas.In(0.5)},
			{X: canvas.In(1.5), Y: canvas.In(0.25)},
			{X: canvas.In(1), Y: canvas.In(0.25)},
		},
		StrokeWidth: canvas.Pt(0.5),
		Stroke:      canvas.Black,
	})
	return c
}

func TestRenderWellFormed(t *testing.T) {
	out, err := Render(testCanvas(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("output is not well-formed xml: %v", err)
		}
	}
}

func TestRenderElementOrder(t *testing.T) {
	out, err := Render(testCanvas(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	rect := strings.Index(s, "<rect")
	text := strings.Index(s, "<text")
	poly := strings.Index(s, "<polyline")
	if rect == -1 || text == -1 || poly == -1 {
		t.Fatalf("missing elements in output:\n%s", s)
	}
	if !(rect < text && text < poly) {
		t.Errorf("elements out of instruction order: rect=%d text=%d polyline=%d", rect, text, poly)
	}
}

func TestRenderEscapesText(t *testing.T) {
	out, err := Render(testCanvas(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "Ann &amp; Bob &lt;family&gt;") {
		t.Errorf("text not escaped:\n%s", s)
	}
	if strings.Contains(s, "<family>") {
		t.Errorf("raw markup leaked into output:\n%s", s)
	}
}

func TestRenderDocumentSize(t *testing.T) {
	c := canvas.New()
	c.Add(canvas.Rect{X0: 0, Y0: 0, X1: canvas.In(4), Y1: canvas.In(2)})

	out, err := Render(c, Options{Unit: canvas.UnitIn, FullXML: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, `width="4in"`) || !strings.Contains(s, `height="2in"`) {
		t.Errorf("wrong document size:\n%s", s)
	}
	if !strings.Contains(s, `viewBox="0 0 4 2"`) {
		t.Errorf("wrong viewBox:\n%s", s)
	}
}

func TestRenderUnits(t *testing.T) {
	c := canvas.New()
	c.Add(canvas.Rect{X0: 0, Y0: 0, X1: canvas.In(1), Y1: canvas.In(1)})

	out, err := Render(c, Options{Unit: canvas.UnitMM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, `width="25.4mm"`) {
		t.Errorf("size not expressed in millimetres:\n%s", s)
	}
	if !strings.Contains(s, `width="25.4"`) {
		t.Errorf("rect coordinates not expressed in millimetres:\n%s", s)
	}
}

func TestRenderFullXML(t *testing.T) {
	c := canvas.New()
	c.Add(canvas.Line{X1: canvas.In(1)})

	out, err := Render(c, Options{Unit: canvas.UnitIn, FullXML: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "<?xml") {
		t.Error("missing xml declaration")
	}
	if !strings.Contains(string(out), "<!DOCTYPE svg") {
		t.Error("missing doctype")
	}

	out, err = Render(c, Options{Unit: canvas.UnitIn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "<svg") {
		t.Errorf("fragment output should begin with the svg element, got:\n%s", out)
	}
}

func TestRenderSealsCanvas(t *testing.T) {
	c := canvas.New()
	c.Add(canvas.Line{X1: canvas.In(1)})
	if _, err := Render(c, DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Sealed() {
		t.Error("canvas not sealed after render")
	}
}
