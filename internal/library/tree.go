package library

import (
	"fmt"
	"strings"

	"crate-sync/internal/crate"
)

// Separator joins hierarchy levels in a Serato crate name.
const Separator = "%%"

// SplitCrateName splits a crate base name (without extension) into its
// hierarchy segments.
func SplitCrateName(name string) []string {
	return strings.Split(name, Separator)
}

// CrateResult is one decoded crate, ready to be folded into a Tree.
type CrateResult struct {
	// File is the crate file the result came from.
	File     string
	Name     string
	Segments []string
	Tracks   []Track
}

// Node is a position in the crate hierarchy. A node is crate-backed when a
// crate file terminates on it; otherwise it only exists because deeper
// crates name it.
type Node struct {
	Name     string
	Children []*Node
	Tracks   []*Track
	// File is the crate file backing this node, empty for intermediates.
	File string

	parent    *Node
	fromCrate bool
}

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// FromCrate reports whether a crate file terminates on n.
func (n *Node) FromCrate() bool {
	return n.fromCrate
}

// Path returns the segment path from the root to n.
func (n *Node) Path() []string {
	var segs []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		segs = append(segs, cur.Name)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// Registry holds every distinct track of a run, in first-seen order.
type Registry struct {
	tracks []*Track
	index  map[string]*Track
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Track)}
}

// Intern returns the registry's track for t.Path, adding t if the path is
// new. The first occurrence wins.
func (r *Registry) Intern(t Track) *Track {
	if existing, ok := r.index[t.Path]; ok {
		return existing
	}
	tr := t
	r.tracks = append(r.tracks, &tr)
	r.index[t.Path] = &tr
	return &tr
}

// Lookup returns the track stored for path.
func (r *Registry) Lookup(path string) (*Track, bool) {
	t, ok := r.index[path]
	return t, ok
}

// Tracks returns the registered tracks in insertion order.
func (r *Registry) Tracks() []*Track {
	return r.tracks
}

// Len returns the number of distinct tracks.
func (r *Registry) Len() int {
	return len(r.tracks)
}

// Unresolved counts tracks whose files were missing.
func (r *Registry) Unresolved() int {
	n := 0
	for _, t := range r.tracks {
		if !t.Resolved {
			n++
		}
	}
	return n
}

// Tree is the crate hierarchy of one run.
type Tree struct {
	Root     *Node
	Registry *Registry

	nodes map[string]*Node
}

func newTree() *Tree {
	root := &Node{Name: "ROOT"}
	return &Tree{
		Root:     root,
		Registry: NewRegistry(),
		nodes:    map[string]*Node{"": root},
	}
}

// Node returns the node at the given segment path.
func (t *Tree) Node(segments ...string) (*Node, bool) {
	n, ok := t.nodes[pathKey(segments)]
	return n, ok
}

// BuildTree folds crates, in order, into a Tree. Crates that cannot be
// placed are skipped and reported as *crate.FormatError; the remaining
// crates still produce a tree.
func BuildTree(crates []CrateResult) (*Tree, []error) {
	t := newTree()
	var errs []error

	for _, c := range crates {
		if err := validateSegments(c); err != nil {
			errs = append(errs, err)
			continue
		}

		key := pathKey(c.Segments)
		if existing, ok := t.nodes[key]; ok && existing.fromCrate {
			errs = append(errs, &crate.FormatError{
				File:   c.File,
				Offset: -1,
				Reason: fmt.Sprintf("duplicate crate path %q (already defined by %s)", strings.Join(c.Segments, " / "), existing.File),
				Err:    crate.ErrDuplicatePath,
			})
			continue
		}

		node := t.ensure(c.Segments)
		node.fromCrate = true
		node.File = c.File
		for _, tr := range c.Tracks {
			node.Tracks = append(node.Tracks, t.Registry.Intern(tr))
		}
	}

	return t, errs
}

// ensure returns the node at segments, creating intermediates as needed.
func (t *Tree) ensure(segments []string) *Node {
	parent := t.Root
	for i := range segments {
		key := pathKey(segments[:i+1])
		node, ok := t.nodes[key]
		if !ok {
			node = &Node{Name: segments[i], parent: parent}
			parent.Children = append(parent.Children, node)
			t.nodes[key] = node
		}
		parent = node
	}
	return parent
}

func validateSegments(c CrateResult) error {
	if len(c.Segments) == 0 {
		return &crate.FormatError{File: c.File, Offset: -1, Reason: "crate has no name", Err: crate.ErrInvalidName}
	}
	for _, s := range c.Segments {
		if strings.TrimSpace(s) == "" {
			return &crate.FormatError{
				File:   c.File,
				Offset: -1,
				Reason: fmt.Sprintf("empty segment in crate name %q", c.Name),
				Err:    crate.ErrInvalidName,
			}
		}
	}
	return nil
}

// pathKey joins segments with a byte that cannot appear in a file name.
func pathKey(segments []string) string {
	return strings.Join(segments, "\x00")
}
