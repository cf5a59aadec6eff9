package tree

import (
	"sort"
	"strings"

	"github.com/sokinpui/pcp/model"
)

// Sorted returns a copy of nodes with directories first, then by name
// ignoring case. Equal keys keep their input order.
func Sorted(nodes []model.TreeNode) []model.TreeNode {
	out := make([]model.TreeNode, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDirectory != out[j].IsDirectory {
			return out[i].IsDirectory
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

type searchItem struct {
	node   model.TreeNode
	prefix string
}

// ComputeVisible returns what the browser shows for the given top-level
// nodes. A blank query lists the nodes sorted; otherwise every loaded file
// whose name contains the query, ignoring case, is returned in pre-order
// with DisplayPath set to its ancestors' names.
func ComputeVisible(nodes []model.TreeNode, query string) []model.TreeNode {
	if strings.TrimSpace(query) == "" {
		return Sorted(nodes)
	}
	needle := strings.ToLower(query)

	var matches []model.TreeNode
	stack := make([]searchItem, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, searchItem{node: nodes[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := it.node
		if !n.IsDirectory {
			if strings.Contains(strings.ToLower(n.Name), needle) {
				n.DisplayPath = it.prefix
				matches = append(matches, n)
			}
			continue
		}
		if !n.Loaded() {
			continue
		}
		prefix := n.Name
		if it.prefix != "" {
			prefix = it.prefix + "/" + n.Name
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, searchItem{node: n.Children[i], prefix: prefix})
		}
	}
	return matches
}

// Row is one rendered line of the browser.
type Row struct {
	Node  model.TreeNode
	Level int
	// More is non-zero on the marker row that stands in for children past
	// the page limit.
	More int
}

// Rows flattens the visible list into display rows, descending into
// expanded, loaded directories. Search results are never expanded.
func Rows(visible []model.TreeNode, expanded PathSet, searching bool) []Row {
	if searching {
		rows := make([]Row, len(visible))
		for i, n := range visible {
			rows[i] = Row{Node: n}
		}
		return rows
	}

	var rows []Row
	stack := make([]Row, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		stack = append(stack, Row{Node: visible[i]})
	}
	for len(stack) > 0 {
		row := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rows = append(rows, row)

		n := row.Node
		if row.More > 0 || !n.IsDirectory || !n.Loaded() || !expanded.Has(n.Path) {
			continue
		}
		level := row.Level + 1
		shown, remaining := Page(Sorted(n.Children), PageSize)
		if remaining > 0 {
			stack = append(stack, Row{Node: n, Level: level, More: remaining})
		}
		for i := len(shown) - 1; i >= 0; i-- {
			stack = append(stack, Row{Node: shown[i], Level: level})
		}
	}
	return rows
}

// Leaves returns every loaded file under nodes in pre-order.
func Leaves(nodes []model.TreeNode) []model.TreeNode {
	var out []model.TreeNode
	stack := make([]model.TreeNode, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.IsDirectory {
			out = append(out, n)
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
