package model

// Graph is a read-only traversal interface over parent-child relations.
// Malformed source data may link a person as their own ancestor, so
// implementations are not guaranteed to be acyclic; consumers must guard
// their own traversals.
type Graph interface {
	// Person returns the person with the given id.
	Person(id string) (Person, bool)

	// Father returns the id of the person's father, if known.
	Father(id string) (string, bool)

	// Mother returns the id of the person's mother, if known.
	Mother(id string) (string, bool)
}
