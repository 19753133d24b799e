package extender

// SourceKind tags the variant held by a Source.
type SourceKind int

const (
	KindUnit SourceKind = iota
	KindLegacy
	KindLegacyRef
	KindGroup
	KindOpaque
)

// Source is the tree an extender file evaluates to: a unit, a legacy
// callable, a legacy callable referenced by name, or a group of sources.
// Opaque carries any other value through to dispatch.
type Source struct {
	kind     SourceKind
	unit     Extender
	fn       LegacyFunc
	ref      string
	children []Source
	value    any
}

// Unit wraps a native extender.
func Unit(e Extender) Source { return Source{kind: KindUnit, unit: e} }

// Legacy wraps a bare callable.
func Legacy(fn LegacyFunc) Source { return Source{kind: KindLegacy, fn: fn} }

// LegacyRef references a legacy callable by name.
func LegacyRef(name string) Source { return Source{kind: KindLegacyRef, ref: name} }

// Group nests sources; groups may contain groups.
func Group(children ...Source) Source { return Source{kind: KindGroup, children: children} }

// Opaque carries a value that has no Extend capability.
func Opaque(v any) Source { return Source{kind: KindOpaque, value: v} }

// Kind returns the variant tag.
func (s Source) Kind() SourceKind { return s.kind }

// Children returns a group's members.
func (s Source) Children() []Source { return s.children }

// Flatten resolves a source tree into an ordered list of extenders,
// depth-first. Legacy forms are wrapped in *LegacyAdapter; named references
// are looked up through resolver when invoked.
func Flatten(src Source, resolver LegacyResolver) []Extender {
	var out []Extender
	flattenInto(src, resolver, &out)
	return out
}

func flattenInto(src Source, resolver LegacyResolver, out *[]Extender) {
	switch src.kind {
	case KindGroup:
		for _, child := range src.children {
			flattenInto(child, resolver, out)
		}
	case KindLegacy:
		*out = append(*out, &LegacyAdapter{fn: src.fn})
	case KindLegacyRef:
		*out = append(*out, &LegacyAdapter{ref: src.ref, resolver: resolver})
	case KindOpaque:
		*out = append(*out, &opaqueUnit{value: src.value})
	case KindUnit:
		if src.unit == nil {
			*out = append(*out, &opaqueUnit{})
			return
		}
		*out = append(*out, src.unit)
	}
}
