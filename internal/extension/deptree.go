package extension

import (
	"fmt"
	"io"
)

// DependencyNode is one extension in a dependency tree.
type DependencyNode struct {
	ID        string
	Extension *Extension
	Children  []*DependencyNode
	Deduped   bool // already shown earlier in the tree
	Missing   bool // required id is not installed
	Enabled   bool
}

// BuildDependencyTree expands the dependency ids of id recursively. Each id
// is expanded once; later occurrences are marked Deduped, which also stops
// cycles.
func BuildDependencyTree(id string, exts []*Extension) (*DependencyNode, error) {
	byID := index(exts)
	if _, ok := byID[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return buildNode(id, byID, make(map[string]bool)), nil
}

func buildNode(id string, byID map[string]*Extension, seen map[string]bool) *DependencyNode {
	node := &DependencyNode{ID: id}
	if seen[id] {
		node.Deduped = true
		return node
	}
	seen[id] = true

	ext, ok := byID[id]
	if !ok {
		node.Missing = true
		return node
	}
	node.Extension = ext

	deps, _ := ext.DependencyIDs()
	for _, dep := range deps {
		node.Children = append(node.Children, buildNode(dep, byID, seen))
	}
	return node
}

// BootOrder returns exts ordered so that every extension follows the
// extensions it depends on. Ties keep the input order. Dependencies outside
// exts are ignored; cycles are broken at the first extension reached again.
func BootOrder(exts []*Extension) []*Extension {
	byID := index(exts)
	visited := make(map[string]bool, len(exts))
	ordered := make([]*Extension, 0, len(exts))

	var visit func(ext *Extension)
	visit = func(ext *Extension) {
		if visited[ext.ID()] {
			return
		}
		visited[ext.ID()] = true
		deps, _ := ext.DependencyIDs()
		for _, dep := range deps {
			if d, ok := byID[dep]; ok {
				visit(d)
			}
		}
		ordered = append(ordered, ext)
	}

	for _, ext := range exts {
		visit(ext)
	}
	return ordered
}

func index(exts []*Extension) map[string]*Extension {
	byID := make(map[string]*Extension, len(exts))
	for _, ext := range exts {
		byID[ext.ID()] = ext
	}
	return byID
}

// MarkEnabled sets Enabled on every node whose id is enabled in st.
func MarkEnabled(node *DependencyNode, st *State) {
	if node == nil {
		return
	}
	node.Enabled = st.IsEnabled(node.ID)
	for _, child := range node.Children {
		MarkEnabled(child, st)
	}
}

// PrintTree prints the dependency tree with box-drawing characters.
func PrintTree(w io.Writer, node *DependencyNode, prefix string, isLast bool) {
	if node == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	label := node.ID
	switch {
	case node.Missing:
		label += " (not installed)"
	case node.Deduped:
		label += " (deduped)"
	case node.Enabled:
		label += " (enabled)"
	}

	if prefix == "" {
		fmt.Fprintf(w, "  %s\n", label)
	} else {
		fmt.Fprintf(w, "  %s%s%s\n", prefix, connector, label)
	}

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	} else {
		childPrefix = " "
	}

	for i, child := range node.Children {
		PrintTree(w, child, childPrefix, i == len(node.Children)-1)
	}
}
