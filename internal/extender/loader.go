package extender

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// FileName is the extender file looked up at an extension root.
const FileName = "extend.yaml"

// Loader evaluates an extension's extender file. ok is false when the
// extension has none.
type Loader interface {
	Load(dir string) (src Source, ok bool, err error)
}

// FileLoader reads extend.yaml. The document is a unit mapping with a
// "kind" key, a string naming a legacy callable, or a list nesting any of
// these to any depth:
//
//	[{kind: locales, dir: locale}, [legacy-listeners, {kind: settings}]]
type FileLoader struct {
	Registry *Registry
}

// Load implements Loader. A missing file is not an error.
func (l *FileLoader) Load(dir string) (Source, bool, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Source{}, false, nil
		}
		return Source{}, false, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Source{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Group(), true, nil
	}

	root := doc.Content[0]
	src, err := l.decode(root)
	if err != nil {
		return Source{}, false, fmt.Errorf("loading %s: %w", path, err)
	}
	if root.Kind != yaml.SequenceNode {
		src = Group(src)
	}
	return src, true, nil
}

func (l *FileLoader) decode(n *yaml.Node) (Source, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		children := make([]Source, 0, len(n.Content))
		for _, c := range n.Content {
			child, err := l.decode(c)
			if err != nil {
				return Source{}, err
			}
			children = append(children, child)
		}
		return Group(children...), nil

	case yaml.MappingNode:
		var head struct {
			Kind string `yaml:"kind"`
		}
		if err := n.Decode(&head); err != nil {
			return Source{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if head.Kind == "" {
			return Source{}, fmt.Errorf("line %d: extender mapping has no kind", n.Line)
		}
		if l.Registry == nil {
			return Source{}, fmt.Errorf("line %d: %w %q", n.Line, ErrUnknownKind, head.Kind)
		}
		unit, err := l.Registry.Build(head.Kind, n)
		if err != nil {
			return Source{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Unit(unit), nil

	case yaml.AliasNode:
		return l.decode(n.Alias)

	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return LegacyRef(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return Source{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Opaque(v), nil

	default:
		return Source{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}
