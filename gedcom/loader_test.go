package gedcom

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iand/pedigree/model"
)

const sampleGedcom = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Ivy /Stone/
1 SEX F
1 BIRT
2 DATE 12 Apr 1970
0 @I2@ INDI
1 NAME Hal /Stone/
1 SEX M
1 BIRT
2 DATE 1940
1 DEAT
2 DATE Mar 2001
0 @I3@ INDI
1 NAME Mae /Brook/
1 SEX F
1 BIRT
2 DATE ABT 1945
0 @F1@ FAM
1 HUSB @I2@
1 WIFE @I3@
1 CHIL @I1@
0 TRLR
`

func decodeSample(t *testing.T) *Graph {
	t.Helper()
	g, err := Decode(strings.NewReader(sampleGedcom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestDecodePeople(t *testing.T) {
	g := decodeSample(t)

	want := []model.Person{
		{ID: "I1", Name: "Ivy Stone", Sex: model.SexFemale, BirthYear: 1970},
		{ID: "I2", Name: "Hal Stone", Sex: model.SexMale, BirthYear: 1940, DeathYear: 2001},
		{ID: "I3", Name: "Mae Brook", Sex: model.SexFemale, BirthYear: 1945},
	}
	if diff := cmp.Diff(want, g.People()); diff != "" {
		t.Errorf("people mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeParentLinks(t *testing.T) {
	g := decodeSample(t)

	f, ok := g.Father("I1")
	if !ok || f != "I2" {
		t.Errorf("got father %q %v, wanted I2", f, ok)
	}
	m, ok := g.Mother("I1")
	if !ok || m != "I3" {
		t.Errorf("got mother %q %v, wanted I3", m, ok)
	}

	if _, ok := g.Father("I2"); ok {
		t.Error("got a father for I2, wanted none")
	}
}

func TestDecodeFirstFamilyWins(t *testing.T) {
	const ged = `0 HEAD
0 @I1@ INDI
1 NAME Kid
0 @I2@ INDI
1 NAME Dad One
1 SEX M
0 @I3@ INDI
1 NAME Dad Two
1 SEX M
0 @F1@ FAM
1 HUSB @I2@
1 CHIL @I1@
0 @F2@ FAM
1 HUSB @I3@
1 CHIL @I1@
0 TRLR
`
	g, err := Decode(strings.NewReader(ged))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, ok := g.Father("I1")
	if !ok || f != "I2" {
		t.Errorf("got father %q %v, wanted I2 from the first family", f, ok)
	}
}

func TestDecodeSex(t *testing.T) {
	testCases := []struct {
		v    string
		want model.Sex
	}{
		{v: "M", want: model.SexMale},
		{v: "F", want: model.SexFemale},
		{v: "U", want: model.SexUnknown},
		{v: "", want: model.SexUnknown},
	}
	for _, tc := range testCases {
		if got := decodeSex(tc.v); got != tc.want {
			t.Errorf("decodeSex(%q): got %v, wanted %v", tc.v, got, tc.want)
		}
	}
}

func TestFindPersonByID(t *testing.T) {
	g := decodeSample(t)

	p, ok := g.FindPerson("I2")
	if !ok || p.Name != "Hal Stone" {
		t.Errorf("got %v %v, wanted Hal Stone", p, ok)
	}
}

func TestFindPersonByName(t *testing.T) {
	g := decodeSample(t)

	p, ok := g.FindPerson("mae brook")
	if !ok || p.ID != "I3" {
		t.Errorf("got %v %v, wanted I3", p, ok)
	}
}

func TestFindPersonFuzzy(t *testing.T) {
	g := decodeSample(t)

	// close but not exact, matched by similarity
	p, ok := g.FindPerson("ivy stone.")
	if !ok || p.ID != "I1" {
		t.Errorf("got %v %v, wanted I1", p, ok)
	}
}

func TestFindPersonNoMatch(t *testing.T) {
	g := decodeSample(t)

	if p, ok := g.FindPerson("zzqq"); ok {
		t.Errorf("got %v, wanted no match", p)
	}
}

func TestDecodeEmpty(t *testing.T) {
	g, err := Decode(strings.NewReader("0 HEAD\n0 TRLR\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.People()) != 0 {
		t.Errorf("got %d people, wanted 0", len(g.People()))
	}
}
