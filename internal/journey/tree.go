// Package journey assembles the provenance hierarchy
// message → order → line item → velocity, and regroups it by supplier or by
// product.
package journey

import (
	"sort"
	"time"

	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/velocity"
)

// UnknownSource labels a message group with neither a message record nor a supplier.
const UnknownSource = "Unknown Source"

const orderLabelPrefix = "Order from "

// Node ID helpers. IDs only depend on source ids so they are stable across rebuilds.
func messageNodeID(messageID string) string { return "msg-" + messageID }
func orderNodeID(orderID string) string     { return "order-" + orderID }
func itemNodeID(itemID string) string       { return "item-" + itemID }
func velocityNodeID(itemID string) string   { return "velocity-" + itemID }

// Build returns the chronological journey tree for orders, using messages
// (optional) for sender and subject labels.
func Build(orders []model.ExtractedOrder, messages []model.RawEmail) []*model.JourneyNode {
	enriched := velocity.Enrich(orders)
	return Assemble(enriched, messages, velocity.BuildEnriched(enriched))
}

type messageGroup struct {
	messageID string
	orders    []model.ExtractedOrder
}

// Assemble builds the chronological tree from already enriched orders and
// their profiles. A line item gets a velocity child only when profiles has an
// entry for its normalized name.
func Assemble(enriched []model.ExtractedOrder, messages []model.RawEmail, profiles map[string]model.ItemVelocityProfile) []*model.JourneyNode {
	byID := make(map[string]model.RawEmail, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	var groups []*messageGroup
	index := make(map[string]*messageGroup)
	for _, o := range enriched {
		g, ok := index[o.SourceMessageID]
		if !ok {
			g = &messageGroup{messageID: o.SourceMessageID}
			index[o.SourceMessageID] = g
			groups = append(groups, g)
		}
		g.orders = append(g.orders, o)
	}

	type dated struct {
		node *model.JourneyNode
		date time.Time
	}
	roots := make([]dated, 0, len(groups))
	for _, g := range groups {
		msg, known := byID[g.messageID]
		node, date := messageNode(g, msg, known, profiles)
		roots = append(roots, dated{node: node, date: date})
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].date.After(roots[j].date)
	})

	out := make([]*model.JourneyNode, len(roots))
	for i, r := range roots {
		out[i] = r.node
	}
	return out
}

func messageNode(g *messageGroup, msg model.RawEmail, known bool, profiles map[string]model.ItemVelocityProfile) (*model.JourneyNode, time.Time) {
	label := UnknownSource
	switch {
	case known && msg.Sender != "":
		label = msg.Sender
	case g.orders[0].Supplier != "":
		label = g.orders[0].Supplier
	}

	subtitle := plural(len(g.orders), "order")
	if known && msg.Subject != "" {
		subtitle = msg.Subject
	}

	// The message date wins; otherwise the group's latest order date.
	var date time.Time
	if known {
		date = model.ParseDate(msg.Date)
	}
	if date.IsZero() {
		for _, o := range g.orders {
			if d := o.Date(); d.After(date) {
				date = d
			}
		}
	}

	node := model.NewNode(messageNodeID(g.messageID), label, subtitle, model.EmailNodeData{
		MessageID:  g.messageID,
		Subject:    msg.Subject,
		Sender:     msg.Sender,
		Date:       date,
		OrderCount: len(g.orders),
	})
	for _, o := range g.orders {
		node.Children = append(node.Children, orderNode(o, profiles))
	}
	return node, date
}

func orderNode(o model.ExtractedOrder, profiles map[string]model.ItemVelocityProfile) *model.JourneyNode {
	node := model.NewNode(orderNodeID(o.ID), orderLabelPrefix+o.Supplier, orderSubtitle(o), model.OrderNodeData{
		OrderID:         o.ID,
		SourceMessageID: o.SourceMessageID,
		Supplier:        o.Supplier,
		OrderDate:       o.Date(),
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
		Confidence:      o.Confidence,
	})
	for _, item := range o.Items {
		node.Children = append(node.Children, lineItemNode(o, item, profiles))
	}
	return node
}

func lineItemNode(o model.ExtractedOrder, item model.LineItem, profiles map[string]model.ItemVelocityProfile) *model.JourneyNode {
	label, _ := item.DisplayName()
	node := model.NewNode(itemNodeID(item.ID), label, lineItemSubtitle(item), model.LineItemNodeData{
		OrderID: o.ID,
		Item:    item,
	})
	if p, ok := profiles[item.NormalizedName]; ok {
		node.Children = []*model.JourneyNode{velocityNode(velocityNodeID(item.ID), p)}
	}
	return node
}

func velocityNode(id string, p model.ItemVelocityProfile) *model.JourneyNode {
	return model.NewNode(id, velocityLabel(p.DailyBurnRate), velocitySubtitle(p), velocityData(p))
}

func velocityData(p model.ItemVelocityProfile) model.VelocityNodeData {
	return model.VelocityNodeData{
		NormalizedName:      p.NormalizedName,
		DisplayName:         p.DisplayName,
		DailyBurnRate:       p.DailyBurnRate,
		AverageCadenceDays:  p.AverageCadenceDays,
		OrderCount:          p.OrderCount,
		RecommendedMin:      p.RecommendedMin,
		RecommendedOrderQty: p.RecommendedOrderQty,
		NextPredictedOrder:  p.NextPredictedOrder,
	}
}
