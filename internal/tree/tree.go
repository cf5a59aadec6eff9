// Package tree holds the lazily loaded directory model shown by the browser.
//
// A directory's children are fetched on demand and merged into an otherwise
// immutable slice of nodes. All walks use an explicit stack, so arbitrarily
// deep trees never grow the goroutine stack.
package tree

import (
	"github.com/sokinpui/pcp/model"
)

const (
	// MaxDepth is the deepest level at which expansion is allowed.
	MaxDepth = 20
	// PageSize caps how many children of a directory are rendered.
	PageSize = 50
)

type frame struct {
	nodes []model.TreeNode
	trail []int
}

// locate returns the index trail from the top level down to the node with
// the given path.
func locate(nodes []model.TreeNode, path string) ([]int, bool) {
	stack := []frame{{nodes: nodes}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, n := range f.nodes {
			trail := make([]int, len(f.trail)+1)
			copy(trail, f.trail)
			trail[len(f.trail)] = i
			if n.Path == path {
				return trail, true
			}
			if len(n.Children) > 0 {
				stack = append(stack, frame{nodes: n.Children, trail: trail})
			}
		}
	}
	return nil, false
}

// MergeChildren returns a tree in which the node at target has its children
// replaced. Only the slices on the way down to the target are copied; every
// other subtree is shared with the input. If target is absent the input is
// returned as is. A nil children slice is stored as a loaded empty directory.
func MergeChildren(nodes []model.TreeNode, target string, children []model.TreeNode) []model.TreeNode {
	trail, ok := locate(nodes, target)
	if !ok {
		return nodes
	}
	if children == nil {
		children = []model.TreeNode{}
	}

	levels := make([][]model.TreeNode, len(trail))
	cur := nodes
	for d, i := range trail {
		levels[d] = cur
		cur = cur[i].Children
	}

	replacement := children
	for d := len(trail) - 1; d >= 0; d-- {
		copied := make([]model.TreeNode, len(levels[d]))
		copy(copied, levels[d])
		copied[trail[d]].Children = replacement
		replacement = copied
	}
	return replacement
}

// Find returns the node with the given path.
func Find(nodes []model.TreeNode, path string) (model.TreeNode, bool) {
	trail, ok := locate(nodes, path)
	if !ok {
		return model.TreeNode{}, false
	}
	cur := nodes
	for _, i := range trail[:len(trail)-1] {
		cur = cur[i].Children
	}
	return cur[trail[len(trail)-1]], true
}

// Depth returns the level of the node at path; top-level nodes are at 0.
func Depth(nodes []model.TreeNode, path string) (int, bool) {
	trail, ok := locate(nodes, path)
	if !ok {
		return 0, false
	}
	return len(trail) - 1, true
}

// ToggleExpansion collapses path if it is expanded, otherwise expands it and
// reports that its children should be loaded. Requests at or past MaxDepth
// leave the set unchanged.
func ToggleExpansion(expanded PathSet, path string, depth int) (PathSet, bool) {
	if depth >= MaxDepth {
		return expanded, false
	}
	if expanded.Has(path) {
		return expanded.Without(path), false
	}
	return expanded.With(path), true
}

// Paths returns every path present in the loaded part of the tree.
func Paths(nodes []model.TreeNode) map[string]bool {
	seen := make(map[string]bool)
	stack := [][]model.TreeNode{nodes}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range level {
			seen[n.Path] = true
			if len(n.Children) > 0 {
				stack = append(stack, n.Children)
			}
		}
	}
	return seen
}

// Page splits children into the rendered prefix and the count left out.
func Page(children []model.TreeNode, limit int) ([]model.TreeNode, int) {
	if limit <= 0 || len(children) <= limit {
		return children, 0
	}
	return children[:limit], len(children) - limit
}

// LoadedDirs returns the paths of every loaded directory, shallowest first.
func LoadedDirs(nodes []model.TreeNode) []string {
	var out []string
	queue := [][]model.TreeNode{nodes}
	for len(queue) > 0 {
		level := queue[0]
		queue = queue[1:]
		for _, n := range level {
			if n.IsDirectory && n.Loaded() {
				out = append(out, n.Path)
				queue = append(queue, n.Children)
			}
		}
	}
	return out
}
