// Package layout positions a multi-generation ancestor tree into
// non-overlapping boxes and connectors ready for drawing.
package layout

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/iand/pedigree/canvas"
	"github.com/iand/pedigree/model"
)

// Options control the geometry of the chart. All lengths are logical units.
type Options struct {
	Generations int           // number of generations to draw, minimum 1, generation 0 is the root
	BoxWidth    canvas.Length // width of every person box
	BoxHeight   canvas.Length // height of every person box
	HSpacing    canvas.Length // horizontal gap between adjacent slots in the deepest generation
	VSpacing    canvas.Length // vertical gap between generation rows
	FontSize    canvas.Length
	Padding     canvas.Length // gap between the box edge and the first text line
	LineSpacing canvas.Length // gap between text lines
	BoxStroke   canvas.Length // stroke width for boxes
	EdgeStroke  canvas.Length // stroke width for connectors
}

// DefaultOptions returns the geometry used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Generations: 4,
		BoxWidth:    canvas.In(1.5),
		BoxHeight:   canvas.Pt(44),
		HSpacing:    canvas.Pt(12),
		VSpacing:    canvas.Pt(24),
		FontSize:    canvas.Pt(10),
		Padding:     canvas.Pt(4),
		LineSpacing: canvas.Pt(1.5),
		BoxStroke:   canvas.Pt(1),
		EdgeStroke:  canvas.Pt(0.5),
	}
}

// Node is one rendered box.
type Node struct {
	Person     model.Person
	Generation int // 0 is the root
	Slot       int // horizontal slot within the generation

	X, Y          canvas.Length // top-left corner
	Width, Height canvas.Length
	Lines         []string // label lines: name, then optional birth and death years

	father, mother *Node
}

// Connector is an elbowed line joining a child box to a parent box.
type Connector struct {
	Points []canvas.Point
}

// Chart is a laid-out ancestor tree. It is immutable once returned by
// Ancestors.
type Chart struct {
	Nodes      []*Node     // depth-first from the root, father before mother
	Connectors []Connector // in paint order
	Width      canvas.Length
	Height     canvas.Length

	root *Node
	opts Options
}

// Ancestors lays out the ancestor tree of the person with the given id.
// Generation k holds ancestors k steps removed from the root, up to
// opts.Generations rows. A parent chain that loops back on itself is
// truncated at the repeated person rather than failing the layout.
func Ancestors(g model.Graph, rootID string, opts Options) (*Chart, error) {
	if opts.Generations < 1 {
		return nil, fmt.Errorf("generations must be at least 1, got %d", opts.Generations)
	}
	if _, ok := g.Person(rootID); !ok {
		return nil, fmt.Errorf("person %q not found in pedigree", rootID)
	}

	ch := &Chart{opts: opts}
	ch.root = ch.walk(g, rootID, 0, 0, make(map[string]bool))

	// The deepest generation reached bounds the chart, not the requested
	// generation count, so a rootless tree stays minimal.
	maxGen := 0
	for _, n := range ch.Nodes {
		if n.Generation > maxGen {
			maxGen = n.Generation
		}
	}

	// Each generation g is a row of 2^g equal slots; a box is centered
	// within its slot. Ancestors are drawn above the root.
	pitch := opts.BoxWidth + opts.HSpacing
	ch.Width = canvas.Length(int64(1)<<maxGen) * pitch
	rowPitch := opts.BoxHeight + opts.VSpacing
	ch.Height = canvas.Length(maxGen)*rowPitch + opts.BoxHeight

	for _, n := range ch.Nodes {
		slotW := ch.Width / canvas.Length(int64(1)<<n.Generation)
		n.X = canvas.Length(n.Slot)*slotW + (slotW-opts.BoxWidth)/2
		n.Y = canvas.Length(maxGen-n.Generation) * rowPitch
		n.Width = opts.BoxWidth
		n.Height = opts.BoxHeight
	}

	ch.collectConnectors(ch.root)

	return ch, nil
}

// walk builds the node tree depth-first, father edge before mother edge.
// onPath holds the ids on the current recursion path only, so a person may
// legitimately appear on both sides of the tree while a true parent-chain
// cycle is still caught.
func (ch *Chart) walk(g model.Graph, id string, gen, slot int, onPath map[string]bool) *Node {
	p, ok := g.Person(id)
	if !ok {
		return nil
	}
	if onPath[id] {
		slog.Warn("pedigree contains a parent cycle, truncating branch", "id", id)
		return nil
	}

	n := &Node{Person: p, Generation: gen, Slot: slot, Lines: labels(p)}
	ch.Nodes = append(ch.Nodes, n)

	if gen+1 < ch.opts.Generations {
		onPath[id] = true
		if fid, ok := g.Father(id); ok {
			n.father = ch.walk(g, fid, gen+1, slot*2, onPath)
		}
		if mid, ok := g.Mother(id); ok {
			n.mother = ch.walk(g, mid, gen+1, slot*2+1, onPath)
		}
		delete(onPath, id)
	}

	return n
}

func labels(p model.Person) []string {
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = "?"
	}
	lines := []string{name}
	if p.BirthYear != 0 {
		lines = append(lines, fmt.Sprintf("b. %d", p.BirthYear))
	}
	if p.DeathYear != 0 {
		lines = append(lines, fmt.Sprintf("d. %d", p.DeathYear))
	}
	return lines
}

func (ch *Chart) collectConnectors(n *Node) {
	if n == nil {
		return
	}
	if n.father != nil {
		ch.collectConnectors(n.father)
		ch.Connectors = append(ch.Connectors, connector(n, n.father))
	}
	if n.mother != nil {
		ch.collectConnectors(n.mother)
		ch.Connectors = append(ch.Connectors, connector(n, n.mother))
	}
}

// connector joins the top center of the child box to the bottom center of
// the parent box, elbowing through the midline between the two rows.
func connector(child, parent *Node) Connector {
	cx := child.X + child.Width/2
	px := parent.X + parent.Width/2
	ctop := child.Y
	pbot := parent.Y + parent.Height
	if cx == px {
		return Connector{Points: []canvas.Point{{X: cx, Y: ctop}, {X: px, Y: pbot}}}
	}
	my := (ctop + pbot) / 2
	return Connector{Points: []canvas.Point{
		{X: cx, Y: ctop},
		{X: cx, Y: my},
		{X: px, Y: my},
		{X: px, Y: pbot},
	}}
}

// Paint appends the chart's drawing instructions to c. The order is fixed:
// for each node its box and label lines, then the father subtree and its
// connector, then the mother subtree and its connector.
func (ch *Chart) Paint(c *canvas.Canvas) {
	ch.paint(c, ch.root)
}

// nodeColor picks the drawing color for a node. A person with no recorded
// name is drawn in gray, like their "?" label.
func nodeColor(n *Node) canvas.Color {
	if strings.TrimSpace(n.Person.Name) == "" {
		return canvas.Gray
	}
	return canvas.Black
}

func (ch *Chart) paint(c *canvas.Canvas, n *Node) {
	if n == nil {
		return
	}

	col := nodeColor(n)
	c.Add(canvas.Rect{
		X0: n.X, Y0: n.Y,
		X1: n.X + n.Width, Y1: n.Y + n.Height,
		StrokeWidth: ch.opts.BoxStroke,
		Stroke:      col,
	})
	for i, line := range n.Lines {
		// baseline of line i, measured from the box top
		y := n.Y + ch.opts.Padding + ch.opts.FontSize*canvas.Length(i+1) + ch.opts.LineSpacing*canvas.Length(i)
		c.Add(canvas.Text{
			X:        n.X + n.Width/2,
			Y:        y,
			Value:    line,
			FontSize: ch.opts.FontSize,
			Color:    col,
		})
	}

	// a connector takes the color of the parent it leads to
	if n.father != nil {
		ch.paint(c, n.father)
		c.Add(canvas.Polyline{
			Points:      connector(n, n.father).Points,
			StrokeWidth: ch.opts.EdgeStroke,
			Stroke:      nodeColor(n.father),
		})
	}
	if n.mother != nil {
		ch.paint(c, n.mother)
		c.Add(canvas.Polyline{
			Points:      connector(n, n.mother).Points,
			StrokeWidth: ch.opts.EdgeStroke,
			Stroke:      nodeColor(n.mother),
		})
	}
}
