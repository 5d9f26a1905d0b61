// Package gedcom decodes a GEDCOM file into a pedigree graph for the chart
// renderer to consume.
package gedcom

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/iand/gdate"
	"github.com/iand/gedcom"
	"golang.org/x/exp/slices"

	"github.com/iand/pedigree/model"
)

// nameSimilarityThreshold is the lowest similarity score accepted when
// falling back to fuzzy name matching in FindPerson.
const nameSimilarityThreshold = 0.7

// Graph is an in-memory pedigree graph decoded from a GEDCOM file. It
// implements model.Graph. Cycles present in the source data are preserved;
// traversals must guard against them.
type Graph struct {
	people  map[string]model.Person
	fathers map[string]string
	mothers map[string]string
	ids     []string // xref order
}

// Load reads and decodes a GEDCOM file.
func Load(filename string) (*Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open gedcom file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes GEDCOM records from r. Individuals and families are
// processed in xref order so the resulting graph does not depend on record
// order in the input.
func Decode(r io.Reader) (*Graph, error) {
	d := gedcom.NewDecoder(r)
	g, err := d.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode gedcom: %w", err)
	}

	slices.SortStableFunc(g.Individual, func(a, b *gedcom.IndividualRecord) bool { return a.Xref < b.Xref })
	slices.SortStableFunc(g.Family, func(a, b *gedcom.FamilyRecord) bool { return a.Xref < b.Xref })

	gr := &Graph{
		people:  make(map[string]model.Person),
		fathers: make(map[string]string),
		mothers: make(map[string]string),
	}

	dp := &gdate.Parser{}
	for _, in := range g.Individual {
		p := model.Person{
			ID:  in.Xref,
			Sex: decodeSex(in.Sex),
		}
		if len(in.Name) > 0 {
			name := gedcom.SplitPersonalName(in.Name[0].Name)
			p.Name = strings.TrimSpace(name.Full)
		}
		for _, er := range in.Event {
			year, ok := eventYear(dp, er)
			if !ok {
				continue
			}
			switch er.Tag {
			case "BIRT":
				if p.BirthYear == 0 {
					p.BirthYear = year
				}
			case "DEAT":
				if p.DeathYear == 0 {
					p.DeathYear = year
				}
			}
		}
		gr.people[in.Xref] = p
		gr.ids = append(gr.ids, in.Xref)
		slog.Debug("loaded individual", "xref", in.Xref, "name", p.Name)
	}

	for _, fr := range g.Family {
		for _, ch := range fr.Child {
			if ch == nil {
				continue
			}
			// the first family a child appears in wins
			if fr.Husband != nil {
				if _, ok := gr.fathers[ch.Xref]; !ok {
					gr.fathers[ch.Xref] = fr.Husband.Xref
				}
			}
			if fr.Wife != nil {
				if _, ok := gr.mothers[ch.Xref]; !ok {
					gr.mothers[ch.Xref] = fr.Wife.Xref
				}
			}
		}
	}

	slog.Info("loaded gedcom", "individuals", len(gr.people), "families", len(g.Family))
	return gr, nil
}

func decodeSex(s string) model.Sex {
	switch s {
	case "M":
		return model.SexMale
	case "F":
		return model.SexFemale
	default:
		return model.SexUnknown
	}
}

func eventYear(dp *gdate.Parser, er *gedcom.EventRecord) (int, bool) {
	if er.Date == "" {
		return 0, false
	}
	dt, err := dp.Parse(er.Date)
	if err != nil {
		return 0, false
	}
	yearer, ok := gdate.AsYear(dt)
	if !ok {
		return 0, false
	}
	return yearer.Year(), true
}

func (g *Graph) Person(id string) (model.Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

func (g *Graph) Father(id string) (string, bool) {
	f, ok := g.fathers[id]
	return f, ok
}

func (g *Graph) Mother(id string) (string, bool) {
	m, ok := g.mothers[id]
	return m, ok
}

// People returns every person in xref order.
func (g *Graph) People() []model.Person {
	ps := make([]model.Person, 0, len(g.ids))
	for _, id := range g.ids {
		ps = append(ps, g.people[id])
	}
	return ps
}

// FindPerson looks a person up by xref id, then by exact name, then by the
// closest name match above a similarity threshold.
func (g *Graph) FindPerson(key string) (model.Person, bool) {
	if p, ok := g.people[key]; ok {
		return p, true
	}

	for _, id := range g.ids {
		if strings.EqualFold(g.people[id].Name, key) {
			return g.people[id], true
		}
	}

	oc := metrics.NewOverlapCoefficient()
	best := 0.0
	var bestPerson model.Person
	for _, id := range g.ids {
		p := g.people[id]
		s := strutil.Similarity(strings.ToLower(p.Name), strings.ToLower(key), oc)
		if s > best {
			best = s
			bestPerson = p
		}
	}
	if best < nameSimilarityThreshold {
		return model.Person{}, false
	}
	slog.Info("matched person by name similarity", "name", bestPerson.Name, "xref", bestPerson.ID, "similarity", best)
	return bestPerson, true
}
