package model

import (
	"strings"
	"time"
)

// Enrichment is the optional third-party lookup block attached to a line item
// (barcode or URL lookups performed upstream).
type Enrichment struct {
	HumanizedName string `json:"humanizedName,omitempty" yaml:"humanizedName,omitempty"`
	CleanName     string `json:"cleanName,omitempty" yaml:"cleanName,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ProductURL    string `json:"productUrl,omitempty" yaml:"productUrl,omitempty"`
	ExternalID    string `json:"externalId,omitempty" yaml:"externalId,omitempty"`
}

// LineItem is one product line inside one order.
type LineItem struct {
	Name            string      `json:"name" yaml:"name"`
	Quantity        float64     `json:"quantity" yaml:"quantity"`
	Unit            string      `json:"unit" yaml:"unit"`
	UnitPrice       *float64    `json:"unitPrice,omitempty" yaml:"unitPrice,omitempty"`
	TotalPrice      *float64    `json:"totalPrice,omitempty" yaml:"totalPrice,omitempty"`
	ID              string      `json:"id,omitempty" yaml:"id,omitempty"`
	SourceOrderID   string      `json:"sourceOrderId,omitempty" yaml:"sourceOrderId,omitempty"`
	SourceMessageID string      `json:"sourceMessageId,omitempty" yaml:"sourceMessageId,omitempty"`
	NormalizedName  string      `json:"normalizedName,omitempty" yaml:"normalizedName,omitempty"`
	SKU             string      `json:"sku,omitempty" yaml:"sku,omitempty"`
	Location        string      `json:"location,omitempty" yaml:"location,omitempty"`
	Enrichment      *Enrichment `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`
}

// NameSource ranks where a display name came from. Higher is better.
type NameSource int

const (
	NameSourceRaw NameSource = iota + 1
	NameSourceClean
	NameSourceHumanized
)

// DisplayName returns the best available human label for the item: the
// humanized enrichment name, then the cleaned enrichment name, then the raw name.
func (li LineItem) DisplayName() (string, NameSource) {
	if li.Enrichment != nil {
		if n := strings.TrimSpace(li.Enrichment.HumanizedName); n != "" {
			return n, NameSourceHumanized
		}
		if n := strings.TrimSpace(li.Enrichment.CleanName); n != "" {
			return n, NameSourceClean
		}
	}
	return li.Name, NameSourceRaw
}

// ExtractedOrder is one purchase event produced by upstream extraction.
type ExtractedOrder struct {
	ID              string     `json:"id" yaml:"id"`
	SourceMessageID string     `json:"sourceMessageId" yaml:"sourceMessageId"`
	Supplier        string     `json:"supplier" yaml:"supplier"`
	OrderDate       string     `json:"orderDate" yaml:"orderDate"`
	TotalAmount     *float64   `json:"totalAmount,omitempty" yaml:"totalAmount,omitempty"`
	Items           []LineItem `json:"items" yaml:"items"`
	Confidence      float64    `json:"confidence" yaml:"confidence"`
}

// Date parses OrderDate. Unparsable dates yield the zero time.
func (o ExtractedOrder) Date() time.Time {
	return ParseDate(o.OrderDate)
}

// RawEmail is source-message metadata, used only for journey labels.
type RawEmail struct {
	ID      string `json:"id" yaml:"id"`
	Subject string `json:"subject" yaml:"subject"`
	Sender  string `json:"sender" yaml:"sender"`
	Date    string `json:"date" yaml:"date"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date or date-time. Values without a zone are
// read as UTC. Anything unparsable returns the zero time rather than an error;
// the zero time sorts before every real date and skews cadence math.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Float returns a pointer to v. Handy for optional price fields.
func Float(v float64) *float64 {
	return &v
}
