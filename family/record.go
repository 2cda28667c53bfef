// ABOUTME: PersonRecord, the typed entity record for one person with identity and relationship references.
// ABOUTME: Relationship fields are opaque ids that may not resolve; resolution happens at the graph layer.
package family

// PersonRecord is a single person entity. All relationship fields are
// references by id and may point at records that do not exist; such
// references are treated as absent wherever they are looked up.
type PersonRecord struct {
	ID          string
	Name        string
	BirthDate   string // loosely formatted, not parsed here
	DeathDate   string // loosely formatted, not parsed here
	Sex         string
	FatherID    string
	MotherID    string
	SpouseIDs   []string
	ChildrenIDs []string
}

// HasChild reports whether id is already present in the children set.
func (p *PersonRecord) HasChild(id string) bool {
	for _, c := range p.ChildrenIDs {
		if c == id {
			return true
		}
	}
	return false
}

// AddChild appends id to the children set. Idempotent: adding an id that
// is already present is a no-op.
func (p *PersonRecord) AddChild(id string) {
	if p.HasChild(id) {
		return
	}
	p.ChildrenIDs = append(p.ChildrenIDs, id)
}

// HasSpouse reports whether id is present in the spouse set.
func (p *PersonRecord) HasSpouse(id string) bool {
	for _, s := range p.SpouseIDs {
		if s == id {
			return true
		}
	}
	return false
}

// AddSpouse appends id to the spouse set, skipping duplicates.
func (p *PersonRecord) AddSpouse(id string) {
	if p.HasSpouse(id) {
		return
	}
	p.SpouseIDs = append(p.SpouseIDs, id)
}

// clone returns a deep copy of the record so graph construction never
// aliases caller-owned slices.
func (p PersonRecord) clone() *PersonRecord {
	c := p
	c.SpouseIDs = append([]string(nil), p.SpouseIDs...)
	c.ChildrenIDs = append([]string(nil), p.ChildrenIDs...)
	return &c
}
