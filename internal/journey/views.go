package journey

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/velocity"
)

// View selects how the journey is grouped.
type View string

const (
	ViewChronological View = "chronological"
	ViewSupplier      View = "supplier"
	ViewItem          View = "item"
)

// ParseView maps a user-supplied view name to a View. Empty means chronological.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "", ViewChronological:
		return ViewChronological, nil
	case ViewSupplier, ViewItem:
		return v, nil
	default:
		return "", eris.Errorf("journey: unknown view %q", s)
	}
}

// BuildView builds the requested view. The search query only narrows the
// chronological view.
func BuildView(view View, orders []model.ExtractedOrder, messages []model.RawEmail, query string) []*model.JourneyNode {
	enriched := velocity.Enrich(orders)
	profiles := velocity.BuildEnriched(enriched)
	tree := Assemble(enriched, messages, profiles)

	switch view {
	case ViewSupplier:
		return BySupplier(tree)
	case ViewItem:
		return ByItem(tree, profiles)
	default:
		return Filter(tree, query)
	}
}

// UnknownSupplier labels the by-supplier bucket for orders without a supplier.
const UnknownSupplier = "Unknown Supplier"

// BySupplier regroups every order node of the chronological tree under one
// synthetic node per supplier, sorted by supplier name. The supplier comes
// from each order node's label; spellings differing only in case share a node
// labelled with the first one seen. Input nodes are not modified.
func BySupplier(tree []*model.JourneyNode) []*model.JourneyNode {
	buckets := make(map[string][]*model.JourneyNode)
	labels := make(map[string]string)
	var keys []string
	for _, msg := range tree {
		for _, child := range msg.Children {
			if child.Type != model.NodeOrder {
				continue
			}
			supplier := strings.TrimSpace(strings.TrimPrefix(child.Label, orderLabelPrefix))
			key := strings.ToLower(supplier)
			if _, ok := buckets[key]; !ok {
				keys = append(keys, key)
				labels[key] = supplier
			}
			order := child.Clone()
			order.Expanded = false
			buckets[key] = append(buckets[key], order)
		}
	}

	sort.Strings(keys)

	out := make([]*model.JourneyNode, 0, len(keys))
	for _, key := range keys {
		orders := buckets[key]
		supplier := labels[key]
		label := supplier
		if label == "" {
			label = UnknownSupplier
		}
		data := model.EmailNodeData{Sender: supplier, OrderCount: len(orders)}
		for _, o := range orders {
			if d, ok := o.Data.(model.OrderNodeData); ok && d.OrderDate.After(data.Date) {
				data.Date = d.OrderDate
			}
		}
		node := model.NewNode("supplier-"+key, label, plural(len(orders), "order"), data)
		node.Children = orders
		out = append(out, node)
	}
	return out
}

// ByItem returns one node per profile, highest burn rate first, with one
// order child per occurrence in the profile's date order. Order details are
// taken from the chronological tree's order nodes.
func ByItem(tree []*model.JourneyNode, profiles map[string]model.ItemVelocityProfile) []*model.JourneyNode {
	orders := make(map[string]*model.JourneyNode)
	for _, msg := range tree {
		for _, child := range msg.Children {
			if child.Type == model.NodeOrder {
				if d, ok := child.Data.(model.OrderNodeData); ok {
					orders[d.OrderID] = child
				}
			}
		}
	}

	sorted := velocity.Sorted(profiles)
	out := make([]*model.JourneyNode, 0, len(sorted))
	for _, p := range sorted {
		subtitle := fmt.Sprintf("%s · %s", plural(p.OrderCount, "order"), velocityLabel(p.DailyBurnRate))
		node := model.NewNode("profile-"+p.NormalizedName, p.DisplayName, subtitle, velocityData(p))
		for i, occ := range p.Occurrences {
			node.Children = append(node.Children, occurrenceNode(p, i, occ, orders[occ.OrderID]))
		}
		out = append(out, node)
	}
	return out
}

func occurrenceNode(p model.ItemVelocityProfile, i int, occ model.Occurrence, source *model.JourneyNode) *model.JourneyNode {
	id := fmt.Sprintf("profile-%s-order-%s-%d", p.NormalizedName, occ.OrderID, i)
	subtitle := fmt.Sprintf("%s on %s", formatNumber(occ.Quantity, 2), formatDate(occ.Date))

	if source == nil {
		return model.NewNode(id, "Order "+occ.OrderID, subtitle, model.OrderNodeData{
			OrderID:         occ.OrderID,
			SourceMessageID: occ.SourceMessageID,
			OrderDate:       occ.Date,
		})
	}
	return model.NewNode(id, source.Label, subtitle, source.Data)
}
