// Package checks holds the authored check tables: per-service default
// definitions and per-host overrides. The resolution engine in
// internal/resolve merges them; this package only models and loads them.
package checks

// Definition is one check instance as authored in a default or override
// table. Type selects the checker in the scoring engine; everything else
// is optional. The nested list fields (Records, URLs, Commands, Queries,
// Files) are opaque here: the pipeline copies them verbatim and leaves
// shape validation to the scoring engine's own loader.
type Definition struct {
	Type      string           `yaml:"type" json:"type"`
	Display   string           `yaml:"display,omitempty" json:"display,omitempty"`
	Port      int              `yaml:"port,omitempty" json:"port,omitempty"`
	Credlists []string         `yaml:"credlists,omitempty" json:"credlists,omitempty"`
	Encrypted *bool            `yaml:"encrypted,omitempty" json:"encrypted,omitempty"`
	Anonymous *bool            `yaml:"anonymous,omitempty" json:"anonymous,omitempty"`
	Share     string           `yaml:"share,omitempty" json:"share,omitempty"`
	Domain    string           `yaml:"domain,omitempty" json:"domain,omitempty"`
	Records   []map[string]any `yaml:"records,omitempty" json:"records,omitempty"`
	URLs      []map[string]any `yaml:"urls,omitempty" json:"urls,omitempty"`
	Commands  []map[string]any `yaml:"commands,omitempty" json:"commands,omitempty"`
	Queries   []map[string]any `yaml:"queries,omitempty" json:"queries,omitempty"`
	Files     []map[string]any `yaml:"files,omitempty" json:"files,omitempty"`
}

// Identity is the key that must be unique within one resolved box.
type Identity struct {
	Type    string
	Display string
}

// Identity derives the (type, display-or-empty) key of a definition.
func (d Definition) Identity() Identity {
	return Identity{Type: d.Type, Display: d.Display}
}

// Clone deep-copies a definition so resolved output never aliases the
// authored tables.
func (d Definition) Clone() Definition {
	c := d
	if d.Credlists != nil {
		c.Credlists = append([]string(nil), d.Credlists...)
	}
	if d.Encrypted != nil {
		v := *d.Encrypted
		c.Encrypted = &v
	}
	if d.Anonymous != nil {
		v := *d.Anonymous
		c.Anonymous = &v
	}
	c.Records = cloneRecords(d.Records)
	c.URLs = cloneRecords(d.URLs)
	c.Commands = cloneRecords(d.Commands)
	c.Queries = cloneRecords(d.Queries)
	c.Files = cloneRecords(d.Files)
	return c
}

func cloneRecords(recs []map[string]any) []map[string]any {
	if recs == nil {
		return nil
	}
	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		out[i] = cloneMap(rec)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Defaults maps a service name to its authored check list.
type Defaults map[string][]Definition

// Override is one host's customization: Services replaces a service's
// default list wholesale, Extra is always appended after all
// service-derived checks.
type Override struct {
	Services map[string][]Definition `yaml:"services,omitempty" json:"services,omitempty"`
	Extra    []Definition            `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Overrides maps a host name to its override entry.
type Overrides map[string]Override
