package model

import "time"

// Occurrence is one appearance of a product inside one specific order.
type Occurrence struct {
	OrderID         string    `json:"orderId"`
	SourceMessageID string    `json:"sourceMessageId"`
	Date            time.Time `json:"date"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       *float64  `json:"unitPrice,omitempty"`
}

// ItemVelocityProfile is the canonical identity of one product across all
// orders, keyed by normalized name, with its demand statistics.
type ItemVelocityProfile struct {
	NormalizedName string `json:"normalizedName"`
	DisplayName    string `json:"displayName"`
	Supplier       string `json:"supplier"`
	SKU            string `json:"sku,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ProductURL     string `json:"productUrl,omitempty"`
	ExternalID     string `json:"externalId,omitempty"`

	Occurrences          []Occurrence `json:"orders"`
	TotalQuantityOrdered float64      `json:"totalQuantityOrdered"`
	OrderCount           int          `json:"orderCount"`
	AverageCadenceDays   float64      `json:"averageCadenceDays"`
	DailyBurnRate        float64      `json:"dailyBurnRate"`
	FirstOrderDate       time.Time    `json:"firstOrderDate"`
	LastOrderDate        time.Time    `json:"lastOrderDate"`
	NextPredictedOrder   *time.Time   `json:"nextPredictedOrder,omitempty"`
	RecommendedMin       int          `json:"recommendedMin"`
	RecommendedOrderQty  int          `json:"recommendedOrderQty"`
}
