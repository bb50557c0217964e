package domain

import (
	"sort"
	"time"
)

// Category is one node of the product category hierarchy. ParentID is nil for
// root categories; LayerLevel is 1 for roots and parent+1 otherwise.
type Category struct {
	ID         string
	Name       string
	ParentID   *string
	SortOrder  int
	LayerLevel int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CategoryNode is a category with its attached children, ordered by
// SortOrder then ID.
type CategoryNode struct {
	Category
	Children []*CategoryNode
}

// BuildCategoryTree assembles a flat category list into a forest. Nodes whose
// parent is absent from the input (or nil) become roots. Sibling order is
// SortOrder ascending with ID as the tiebreaker, at every level.
func BuildCategoryTree(items []Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(items))
	for _, it := range items {
		nodes[it.ID] = &CategoryNode{Category: it}
	}

	var roots []*CategoryNode
	for _, it := range items {
		node := nodes[it.ID]
		if it.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*it.ParentID]
		if !ok || parent == node {
			// Dangling parent reference: surface the node as a root
			// rather than dropping it.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortSiblings(roots)
	for _, node := range nodes {
		sortSiblings(node.Children)
	}
	return roots
}

func sortSiblings(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// ReorderByIDs returns items permuted so that the ones named in ids come
// first, in the given order, followed by the remaining items in their
// original relative order. Every input item appears exactly once; ids that
// match nothing are ignored.
func ReorderByIDs(items []Category, ids []string) []Category {
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	picked := make(map[int]bool, len(ids))
	out := make([]Category, 0, len(items))
	for _, id := range ids {
		i, ok := index[id]
		if !ok || picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, items[i])
	}
	for i, it := range items {
		if !picked[i] {
			out = append(out, it)
		}
	}
	return out
}

// NextSortOrder returns max(sibling sort orders)+1, starting at 1 for an
// empty sibling set.
func NextSortOrder(siblings []Category) int {
	max := 0
	for _, s := range siblings {
		if s.SortOrder > max {
			max = s.SortOrder
		}
	}
	return max + 1
}
