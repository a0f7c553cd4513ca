package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode_TypeFollowsPayload(t *testing.T) {
	tests := []struct {
		data NodeData
		want NodeType
	}{
		{EmailNodeData{}, NodeMessage},
		{OrderNodeData{}, NodeOrder},
		{LineItemNodeData{}, NodeLineItem},
		{VelocityNodeData{}, NodeVelocity},
	}
	for _, tt := range tests {
		n := NewNode("id", "label", "", tt.data)
		assert.Equal(t, tt.want, n.Type)
	}
}

func TestJourneyNode_CloneIsDeep(t *testing.T) {
	root := NewNode("root", "Root", "", EmailNodeData{})
	child := NewNode("child", "Child", "", OrderNodeData{OrderID: "o1"})
	child.Children = []*JourneyNode{NewNode("leaf", "Leaf", "", LineItemNodeData{})}
	root.Children = []*JourneyNode{child}

	c := root.Clone()
	c.Children[0].Label = "changed"
	c.Children[0].Children[0].Expanded = true

	require.Len(t, root.Children, 1)
	assert.Equal(t, "Child", root.Children[0].Label)
	assert.False(t, root.Children[0].Children[0].Expanded)
}

func TestJourneyNode_CloneNil(t *testing.T) {
	var n *JourneyNode
	assert.Nil(t, n.Clone())
}

func TestJourneyNode_JSONRoundTrip(t *testing.T) {
	next := time.Date(2024, 11, 29, 0, 0, 0, 0, time.UTC)
	root := NewNode("msg-m1", "orders@acme.com", "Order", EmailNodeData{MessageID: "m1", OrderCount: 1,
		Date: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)})
	order := NewNode("order-o1", "Order from Acme", "1 item", OrderNodeData{OrderID: "o1", Supplier: "Acme", TotalAmount: Float(9)})
	item := NewNode("item-o1-item-0", "Tape", "1", LineItemNodeData{OrderID: "o1", Item: LineItem{Name: "Tape", Quantity: 1}})
	item.Children = []*JourneyNode{NewNode("velocity-o1-item-0", "0.03/day", "", VelocityNodeData{NormalizedName: "tape", NextPredictedOrder: &next})}
	order.Children = []*JourneyNode{item}
	root.Children = []*JourneyNode{order}
	root.Expanded = true

	b, err := json.Marshal([]*JourneyNode{root})
	require.NoError(t, err)

	var got []*JourneyNode
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 1)
	assert.Equal(t, root, got[0])

	vel, ok := got[0].Children[0].Children[0].Children[0].Data.(VelocityNodeData)
	require.True(t, ok)
	assert.Equal(t, "tape", vel.NormalizedName)
}

func TestJourneyNode_UnmarshalUnknownType(t *testing.T) {
	var n JourneyNode
	err := json.Unmarshal([]byte(`{"id":"x","type":"calendar","data":{}}`), &n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model: journey node "x": unknown type "calendar"`)
}
