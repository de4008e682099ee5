package domain

// QuerySpec is a single query to be answered against every document.
type QuerySpec struct {
	// Query is the natural-language query text.
	Query string `json:"query" yaml:"query"`

	// PersonaHint is free text describing who is asking.
	PersonaHint string `json:"persona_hint" yaml:"persona_hint"`

	// Group is the name of the query group the query was declared in.
	Group string `json:"-" yaml:"-"`

	// Reference is the optional reference answer used for overlap scoring.
	Reference string `json:"-" yaml:"-"`

	// HasReference reports whether Reference was supplied.
	HasReference bool `json:"-" yaml:"-"`
}

// QueryGroup is a named, ordered set of queries.
type QueryGroup struct {
	Name    string
	Queries []QuerySpec
}

// QueryManifest is the ordered set of query groups for a run.
type QueryManifest struct {
	Groups []QueryGroup
}

// Queries returns every query in declaration order.
func (m *QueryManifest) Queries() []QuerySpec {
	if m == nil {
		return nil
	}
	var out []QuerySpec
	for _, g := range m.Groups {
		out = append(out, g.Queries...)
	}
	return out
}

// GroupOf returns the name of the first group declaring the query text.
func (m *QueryManifest) GroupOf(query string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, g := range m.Groups {
		for _, q := range g.Queries {
			if q.Query == query {
				return g.Name, true
			}
		}
	}
	return "", false
}

// Len returns the total number of queries.
func (m *QueryManifest) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, g := range m.Groups {
		n += len(g.Queries)
	}
	return n
}

// References maps query text to its reference answer.
type References map[string]string

// Attach copies matching reference answers onto the manifest's queries.
func (m *QueryManifest) Attach(refs References) {
	if m == nil {
		return
	}
	for gi := range m.Groups {
		for qi := range m.Groups[gi].Queries {
			q := &m.Groups[gi].Queries[qi]
			if ref, ok := refs[q.Query]; ok {
				q.Reference = ref
				q.HasReference = true
			}
		}
	}
}
