package entities

// ObjectionEntry is one category of customer pushback and the canned rebuttal for it.
type ObjectionEntry struct {
	ID              string   `json:"-" yaml:"id"`
	TriggerKeywords []string `json:"trigger_keywords" yaml:"trigger_keywords"`
	Strategy        string   `json:"strategy" yaml:"strategy"`
	Response        string   `json:"response" yaml:"response"`
}

// Catalog is the ordered objection knowledge base. It is loaded once and never mutated.
type Catalog []ObjectionEntry

func (c Catalog) Get(id string) (ObjectionEntry, bool) {
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return ObjectionEntry{}, false
}

func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, e := range c {
		ids = append(ids, e.ID)
	}
	return ids
}
