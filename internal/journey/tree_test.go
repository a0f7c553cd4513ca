package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/velocity"
)

func fixtureOrders() []model.ExtractedOrder {
	return []model.ExtractedOrder{
		{
			ID: "o1", SourceMessageID: "m1", Supplier: "Acme", OrderDate: "2024-11-01",
			TotalAmount: model.Float(45), Confidence: 0.95,
			Items: []model.LineItem{
				{Name: "Nitrile Gloves (SKU-1)", Quantity: 2, Unit: "box", UnitPrice: model.Float(4.5)},
				{Name: "Paper Towels 12 Pack", Quantity: 3, Unit: "case", TotalPrice: model.Float(36)},
			},
		},
		{
			ID: "o2", SourceMessageID: "m1", Supplier: "Acme", OrderDate: "2024-11-01",
			Items: []model.LineItem{{Name: "Tape", Quantity: 1}},
		},
		{
			ID: "o3", SourceMessageID: "m2", Supplier: "Beta Supply", OrderDate: "2024-11-15",
			Items: []model.LineItem{{Name: "nitrile gloves", Quantity: 4}},
		},
	}
}

func fixtureMessages() []model.RawEmail {
	return []model.RawEmail{
		{ID: "m1", Sender: "orders@acme.com", Subject: "Your Acme order", Date: "2024-11-01T08:00:00Z"},
	}
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, nil))
}

func TestBuild_SharedMessageShape(t *testing.T) {
	orders := fixtureOrders()[:2]
	tree := Build(orders, nil)

	require.Len(t, tree, 1)
	root := tree[0]
	assert.Equal(t, model.NodeMessage, root.Type)
	require.Len(t, root.Children, 2)
	for _, child := range root.Children {
		assert.Equal(t, model.NodeOrder, child.Type)
	}
}

func TestBuild_VelocityChildPerLineItem(t *testing.T) {
	tree := Build(fixtureOrders(), fixtureMessages())
	for _, msg := range tree {
		for _, order := range msg.Children {
			for _, item := range order.Children {
				assert.Equal(t, model.NodeLineItem, item.Type)
				require.Len(t, item.Children, 1, item.Label)
				assert.Equal(t, model.NodeVelocity, item.Children[0].Type)
			}
		}
	}
}

func TestAssemble_NoProfileMeansNoVelocityChild(t *testing.T) {
	enriched := velocity.Enrich(fixtureOrders()[:1])
	profiles := velocity.BuildEnriched(enriched)
	delete(profiles, "paper towels")

	tree := Assemble(enriched, nil, profiles)
	require.Len(t, tree, 1)
	items := tree[0].Children[0].Children
	require.Len(t, items, 2)
	assert.Len(t, items[0].Children, 1)
	assert.Len(t, items[1].Children, 0)
}

func TestBuild_MessageLabelsAndOrdering(t *testing.T) {
	tree := Build(fixtureOrders(), fixtureMessages())
	require.Len(t, tree, 2)

	// m2 (Nov 15) is newer than m1 (Nov 1).
	assert.Equal(t, "msg-m2", tree[0].ID)
	assert.Equal(t, "Beta Supply", tree[0].Label)
	assert.Equal(t, "1 order", tree[0].Subtitle)

	assert.Equal(t, "msg-m1", tree[1].ID)
	assert.Equal(t, "orders@acme.com", tree[1].Label)
	assert.Equal(t, "Your Acme order", tree[1].Subtitle)

	data, ok := tree[1].Data.(model.EmailNodeData)
	require.True(t, ok)
	assert.Equal(t, 2, data.OrderCount)
	assert.True(t, time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC).Equal(data.Date))
}

func TestBuild_UnknownSource(t *testing.T) {
	tree := Build([]model.ExtractedOrder{{ID: "o9", SourceMessageID: "m9", OrderDate: "2024-01-01"}}, nil)
	require.Len(t, tree, 1)
	assert.Equal(t, UnknownSource, tree[0].Label)
	assert.Equal(t, "1 order", tree[0].Subtitle)
}

func TestBuild_OrderAndLineItemNodes(t *testing.T) {
	tree := Build(fixtureOrders(), fixtureMessages())
	m1 := tree[1]

	o1 := m1.Children[0]
	assert.Equal(t, "order-o1", o1.ID)
	assert.Equal(t, "Order from Acme", o1.Label)
	assert.Equal(t, "$45.00 · 2 items", o1.Subtitle)
	assert.Equal(t, "1 item", m1.Children[1].Subtitle)

	gloves := o1.Children[0]
	assert.Equal(t, "item-o1-item-0", gloves.ID)
	assert.Equal(t, "Nitrile Gloves (SKU-1)", gloves.Label)
	assert.Equal(t, "2 box @ $4.50 = $9.00", gloves.Subtitle)

	towels := o1.Children[1]
	assert.Equal(t, "3 case = $36.00", towels.Subtitle)

	vel := gloves.Children[0]
	assert.Equal(t, "velocity-o1-item-0", vel.ID)
	assert.Equal(t, "0.43/day", vel.Label)
	assert.Equal(t, "every 14 days · 2 orders", vel.Subtitle)
}

func TestBuild_EnrichedNameLabelsLineItem(t *testing.T) {
	tree := Build([]model.ExtractedOrder{{
		ID: "o1", SourceMessageID: "m1", Supplier: "Acme", OrderDate: "2024-01-01",
		Items: []model.LineItem{{Name: "blu wdgt", Quantity: 1, Enrichment: &model.Enrichment{HumanizedName: "Blue Widget"}}},
	}}, nil)
	assert.Equal(t, "Blue Widget", tree[0].Children[0].Children[0].Label)
}

func TestBuild_StableIDsAcrossRebuilds(t *testing.T) {
	first := Build(fixtureOrders(), fixtureMessages())
	second := Build(fixtureOrders(), fixtureMessages())
	assert.Equal(t, collectIDs(first), collectIDs(second))
}

func collectIDs(nodes []*model.JourneyNode) []string {
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
		ids = append(ids, collectIDs(n.Children)...)
	}
	return ids
}
