package model

// Sex of a person as recorded in the source data.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) IsMale() bool {
	return s == SexMale
}

func (s Sex) IsFemale() bool {
	return s == SexFemale
}

func (s Sex) IsUnknown() bool {
	return s != SexMale && s != SexFemale
}

// Person is a read-only view of one individual in a pedigree graph. The
// rendering core never mutates it.
type Person struct {
	ID        string
	Name      string
	Sex       Sex
	BirthYear int // 0 when unknown
	DeathYear int // 0 when unknown
}
