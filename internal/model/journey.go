package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// NodeType tags a journey node and its payload.
type NodeType string

const (
	NodeMessage  NodeType = "message"
	NodeOrder    NodeType = "order"
	NodeLineItem NodeType = "lineItem"
	NodeVelocity NodeType = "velocity"
)

// NodeData is the payload carried by a journey node. Exactly one concrete type
// exists per NodeType.
type NodeData interface {
	NodeType() NodeType
}

// EmailNodeData describes a source message, or a synthetic grouping of orders
// (the by-supplier view) when MessageID is empty.
type EmailNodeData struct {
	MessageID  string    `json:"messageId,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Sender     string    `json:"sender,omitempty"`
	Date       time.Time `json:"date"`
	OrderCount int       `json:"orderCount"`
}

func (EmailNodeData) NodeType() NodeType { return NodeMessage }

// OrderNodeData describes one order.
type OrderNodeData struct {
	OrderID         string    `json:"orderId"`
	SourceMessageID string    `json:"sourceMessageId"`
	Supplier        string    `json:"supplier"`
	OrderDate       time.Time `json:"orderDate"`
	TotalAmount     *float64  `json:"totalAmount,omitempty"`
	ItemCount       int       `json:"itemCount"`
	Confidence      float64   `json:"confidence"`
}

func (OrderNodeData) NodeType() NodeType { return NodeOrder }

// LineItemNodeData describes one line item of one order.
type LineItemNodeData struct {
	OrderID string   `json:"orderId"`
	Item    LineItem `json:"item"`
}

func (LineItemNodeData) NodeType() NodeType { return NodeLineItem }

// VelocityNodeData summarizes the velocity profile of a line item's product.
type VelocityNodeData struct {
	NormalizedName      string     `json:"normalizedName"`
	DisplayName         string     `json:"displayName"`
	DailyBurnRate       float64    `json:"dailyBurnRate"`
	AverageCadenceDays  float64    `json:"averageCadenceDays"`
	OrderCount          int        `json:"orderCount"`
	RecommendedMin      int        `json:"recommendedMin"`
	RecommendedOrderQty int        `json:"recommendedOrderQty"`
	NextPredictedOrder  *time.Time `json:"nextPredictedOrder,omitempty"`
}

func (VelocityNodeData) NodeType() NodeType { return NodeVelocity }

// JourneyNode is one node of the journey hierarchy. IDs derive from source
// ids so expand/collapse state tracked by ID survives rebuilds.
type JourneyNode struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label"`
	Subtitle string         `json:"subtitle,omitempty"`
	Children []*JourneyNode `json:"children,omitempty"`
	Data     NodeData       `json:"data"`
	Expanded bool           `json:"expanded"`
}

// NewNode builds a node whose Type matches its payload.
func NewNode(id, label, subtitle string, data NodeData) *JourneyNode {
	return &JourneyNode{
		ID:       id,
		Type:     data.NodeType(),
		Label:    label,
		Subtitle: subtitle,
		Data:     data,
	}
}

// Clone deep-copies the node and its descendants.
func (n *JourneyNode) Clone() *JourneyNode {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*JourneyNode, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// UnmarshalJSON decodes Data into the concrete payload type named by Type.
func (n *JourneyNode) UnmarshalJSON(b []byte) error {
	type alias JourneyNode
	var aux struct {
		alias
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return eris.Wrap(err, "model: decode journey node")
	}
	*n = JourneyNode(aux.alias)

	var err error
	switch n.Type {
	case NodeMessage:
		n.Data, err = decodeData[EmailNodeData](aux.Data)
	case NodeOrder:
		n.Data, err = decodeData[OrderNodeData](aux.Data)
	case NodeLineItem:
		n.Data, err = decodeData[LineItemNodeData](aux.Data)
	case NodeVelocity:
		n.Data, err = decodeData[VelocityNodeData](aux.Data)
	default:
		return eris.Errorf("model: journey node %q: unknown type %q", n.ID, n.Type)
	}
	return err
}

func decodeData[T NodeData](raw json.RawMessage) (NodeData, error) {
	var d T
	if len(raw) == 0 || string(raw) == "null" {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, eris.Wrap(err, "model: decode journey node data")
	}
	return d, nil
}
