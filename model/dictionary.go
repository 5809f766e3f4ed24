package model

// Dictionary is the narrow interface ModelWriter/ModelReader need from the
// id↔string database spec §4.4 calls "an embedded constant-key database...
// provided by an external collaborator." Only the lookups the chunked
// format's dictionary chunk requires are exposed; building, populating, or
// persisting an arbitrary constant-key store is out of scope.
type Dictionary interface {
	ID(s string) (int, bool)
	String(id int) (string, bool)
	Len() int
}

// MapDictionary is a minimal in-memory Dictionary, sufficient for tests and
// Encoder.SaveModel. No constant-key-database library (bbolt, leveldb,
// cdb, ...) appears anywhere in the retrieved example pack, so this is built
// directly on the standard library (see DESIGN.md).
type MapDictionary struct {
	byID  []string
	byStr map[string]int
}

// NewMapDictionary builds a MapDictionary from a dense id-ordered string
// slice (ids are simply the slice's indices).
func NewMapDictionary(entries []string) *MapDictionary {
	d := &MapDictionary{
		byID:  append([]string(nil), entries...),
		byStr: make(map[string]int, len(entries)),
	}
	for id, s := range entries {
		d.byStr[s] = id
	}

	return d
}

// ID returns s's id, or (0, false) if s is absent.
func (d *MapDictionary) ID(s string) (int, bool) {
	id, ok := d.byStr[s]

	return id, ok
}

// String returns the string for id, or ("", false) if id is out of range.
func (d *MapDictionary) String(id int) (string, bool) {
	if id < 0 || id >= len(d.byID) {
		return "", false
	}

	return d.byID[id], true
}

// Len returns the number of entries.
func (d *MapDictionary) Len() int { return len(d.byID) }

// Entries returns the dictionary's strings in id order, for serialization.
func (d *MapDictionary) Entries() []string { return d.byID }
