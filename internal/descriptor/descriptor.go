package descriptor

import (
	"strconv"
	"strings"
	"unicode"
)

// Descriptor is a read-only view over a package's composer.json.
type Descriptor struct {
	root *Map
}

// New wraps an already decoded tree. A nil root behaves as an empty object.
func New(root *Map) *Descriptor {
	if root == nil {
		root = NewMap()
	}
	return &Descriptor{root: root}
}

// FromMap builds a Descriptor from plain Go maps. Key order is sorted; use
// Parse when declaration order matters.
func FromMap(m map[string]any) *Descriptor {
	return New(MapOf(m))
}

// Root returns the underlying tree.
func (d *Descriptor) Root() *Map {
	return d.root
}

// Get resolves a dot-separated path. Segments index objects by key and lists
// by decimal position. A literal top-level key equal to path wins over the
// dotted interpretation. Missing segments report false, never an error.
func (d *Descriptor) Get(path string) (any, bool) {
	if path == "" {
		return d.root, true
	}
	if v, ok := d.root.Get(path); ok {
		return v, true
	}

	var cur any = d.root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case *Map:
			v, ok := node.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether path resolves.
func (d *Descriptor) Has(path string) bool {
	_, ok := d.Get(path)
	return ok
}

// Attr is property-style access: Attr("minimumStability") reads
// "minimum-stability".
func (d *Descriptor) Attr(name string) (any, bool) {
	return d.Get(SnakeCase(name, '-'))
}

// String returns the value at path if it is a non-empty string.
func (d *Descriptor) String(path string) (string, bool) {
	v, ok := d.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// MapAt returns the object at path.
func (d *Descriptor) MapAt(path string) (*Map, bool) {
	v, ok := d.Get(path)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Map)
	return m, ok
}

// Name returns the "vendor/package" name.
func (d *Descriptor) Name() string { s, _ := d.String("name"); return s }

// Description returns the package description.
func (d *Descriptor) Description() string { s, _ := d.String("description"); return s }

// Version returns the declared version, if any.
func (d *Descriptor) Version() string { s, _ := d.String("version"); return s }

// Type returns the composer package type.
func (d *Descriptor) Type() string { s, _ := d.String("type"); return s }

// Homepage returns the package homepage.
func (d *Descriptor) Homepage() string { s, _ := d.String("homepage"); return s }

// Title returns the human title from extra.flarum-extension.title.
func (d *Descriptor) Title() string { s, _ := d.String(PathExtension + ".title"); return s }

// IsExtension reports whether the package declares the extension type.
func (d *Descriptor) IsExtension() bool { return d.Type() == ExtensionType }

// License returns the license identifiers; composer allows a string or a list.
func (d *Descriptor) License() []string {
	v, ok := d.Get("license")
	if !ok {
		return nil
	}
	if s, ok := v.(string); ok {
		return []string{s}
	}
	return stringList(v)
}

// Keywords returns the keyword list.
func (d *Descriptor) Keywords() []string {
	v, _ := d.Get("keywords")
	return stringList(v)
}

// Authors returns the declared authors in order.
func (d *Descriptor) Authors() []Author {
	v, ok := d.Get("authors")
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	authors := make([]Author, 0, len(list))
	for _, item := range list {
		m, ok := item.(*Map)
		if !ok {
			continue
		}
		authors = append(authors, Author{
			Name:     mapString(m, "name"),
			Email:    mapString(m, "email"),
			Homepage: mapString(m, "homepage"),
			Role:     mapString(m, "role"),
		})
	}
	return authors
}

// Require returns the "require" entries in declaration order.
func (d *Descriptor) Require() []Requirement {
	m, ok := d.MapAt("require")
	if !ok {
		return nil
	}
	reqs := make([]Requirement, 0, m.Len())
	for _, k := range m.Keys() {
		reqs = append(reqs, Requirement{Package: k, Constraint: mapString(m, k)})
	}
	return reqs
}

// Funding returns the declared funding entries.
func (d *Descriptor) Funding() []Funding {
	v, ok := d.Get("funding")
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Funding
	for _, item := range list {
		m, ok := item.(*Map)
		if !ok {
			continue
		}
		out = append(out, Funding{Type: mapString(m, "type"), URL: mapString(m, "url")})
	}
	return out
}

// SnakeCase converts camelCase or PascalCase into lower case words joined
// by delim.
func SnakeCase(name string, delim rune) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteRune(delim)
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mapString(m *Map, key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
