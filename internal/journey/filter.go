package journey

import (
	"strings"

	"github.com/sells-group/restock/internal/model"
)

// Filter keeps the nodes whose label or subtitle contains query
// (case-insensitive), plus every ancestor of such a node. Ancestors that keep
// a matching descendant are expanded. An empty query returns a copy of nodes.
func Filter(nodes []*model.JourneyNode, query string) []*model.JourneyNode {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]*model.JourneyNode, len(nodes))
		for i, n := range nodes {
			out[i] = n.Clone()
		}
		return out
	}
	return filterNodes(nodes, q)
}

func filterNodes(nodes []*model.JourneyNode, q string) []*model.JourneyNode {
	var out []*model.JourneyNode
	for _, n := range nodes {
		children := filterNodes(n.Children, q)
		if !matches(n, q) && len(children) == 0 {
			continue
		}
		kept := *n
		kept.Children = children
		if len(children) > 0 {
			kept.Expanded = true
		}
		out = append(out, &kept)
	}
	return out
}

func matches(n *model.JourneyNode, q string) bool {
	return strings.Contains(strings.ToLower(n.Label), q) ||
		strings.Contains(strings.ToLower(n.Subtitle), q)
}
