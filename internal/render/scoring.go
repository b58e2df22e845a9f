package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rangekit/checkgen/internal/checks"
	"github.com/rangekit/checkgen/internal/resolve"
)

// nested maps a check's list field to the singular TOML table name the
// scoring engine expects.
var nested = []struct {
	name string
	get  func(checks.Definition) []map[string]any
}{
	{"record", func(d checks.Definition) []map[string]any { return d.Records }},
	{"url", func(d checks.Definition) []map[string]any { return d.URLs }},
	{"command", func(d checks.Definition) []map[string]any { return d.Commands }},
	{"query", func(d checks.Definition) []map[string]any { return d.Queries }},
	{"file", func(d checks.Definition) []map[string]any { return d.Files }},
}

// CheckConfig renders the nested check configuration consumed by the
// scoring engine: one [[box]] per host, one [[box.<type>]] per check in
// resolved order, only the fields actually authored. Check order is never
// re-sorted; within a nested record the keys are, for byte stability.
func CheckConfig(boxes []resolve.Box) []byte {
	var b strings.Builder
	for _, box := range boxes {
		b.WriteString("[[box]]\n")
		fmt.Fprintf(&b, "name = %s\n", quote(box.Name))
		fmt.Fprintf(&b, "ip = %s\n", quote(box.Addr))
		for _, c := range box.Checks {
			b.WriteString("\n")
			fmt.Fprintf(&b, "[[box.%s]]\n", c.Type)
			writeCheck(&b, c)
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func writeCheck(b *strings.Builder, c checks.Definition) {
	if c.Display != "" {
		fmt.Fprintf(b, "display = %s\n", quote(c.Display))
	}
	if c.Port != 0 {
		fmt.Fprintf(b, "port = %d\n", c.Port)
	}
	if len(c.Credlists) > 0 {
		items := make([]string, len(c.Credlists))
		for i, cl := range c.Credlists {
			items[i] = quote(cl)
		}
		fmt.Fprintf(b, "credlists = [%s]\n", strings.Join(items, ", "))
	}
	if c.Encrypted != nil {
		fmt.Fprintf(b, "encrypted = %t\n", *c.Encrypted)
	}
	if c.Anonymous != nil {
		fmt.Fprintf(b, "anonymous = %t\n", *c.Anonymous)
	}
	if c.Share != "" {
		fmt.Fprintf(b, "share = %s\n", quote(c.Share))
	}
	if c.Domain != "" {
		fmt.Fprintf(b, "domain = %s\n", quote(c.Domain))
	}
	for _, n := range nested {
		for _, rec := range n.get(c) {
			b.WriteString("\n")
			fmt.Fprintf(b, "[[box.%s.%s]]\n", c.Type, n.name)
			keys := make([]string, 0, len(rec))
			for k := range rec {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(b, "%s = %s\n", k, value(rec[k]))
			}
		}
	}
}

// value renders an opaque authored value as a TOML literal. The pipeline
// copies nested fields without inspecting them, so this has to cover
// whatever YAML/JSON decoding can produce.
func value(v any) string {
	switch t := v.(type) {
	case string:
		return quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		items := make([]string, len(t))
		for i, e := range t {
			items[i] = value(e)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = fmt.Sprintf("%s = %s", k, value(t[k]))
		}
		return "{" + strings.Join(items, ", ") + "}"
	case nil:
		return `""`
	default:
		return quote(fmt.Sprintf("%v", t))
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
