package model

import "time"

// HistoryEntry is one purchase of an inventory item.
type HistoryEntry struct {
	OrderID  string    `json:"orderId"`
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// InventoryItem is the flat ledger record, keyed by the exact lowercase,
// trimmed item name. Draft marks items not yet committed downstream.
type InventoryItem struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	OriginalName   string `json:"originalName,omitempty"`
	NormalizedName string `json:"normalizedName"`
	Supplier       string `json:"supplier"`
	SKU            string `json:"sku,omitempty"`
	Unit           string `json:"unit,omitempty"`
	Location       string `json:"location,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ProductURL     string `json:"productUrl,omitempty"`
	ExternalID     string `json:"externalId,omitempty"`

	History             []HistoryEntry `json:"history"`
	TotalQuantity       float64        `json:"totalQuantity"`
	OrderCount          int            `json:"orderCount"`
	AverageCadenceDays  float64        `json:"averageCadenceDays"`
	DailyBurnRate       float64        `json:"dailyBurnRate"`
	FirstOrderDate      time.Time      `json:"firstOrderDate"`
	LastOrderDate       time.Time      `json:"lastOrderDate"`
	NextPredictedOrder  *time.Time     `json:"nextPredictedOrder,omitempty"`
	RecommendedMin      int            `json:"recommendedMin"`
	RecommendedOrderQty int            `json:"recommendedOrderQty"`
	LastUnitPrice       *float64       `json:"lastUnitPrice,omitempty"`
	TotalSpend          float64        `json:"totalSpend"`

	PossibleDuplicates []string `json:"possibleDuplicates,omitempty"`
	Draft              bool     `json:"draft"`
}

// SyncRecord is the record shape pushed to the downstream inventory system.
// Field names and meanings are a stable contract.
type SyncRecord struct {
	Name          string `json:"name"`
	Supplier      string `json:"supplier"`
	MinQuantity   int    `json:"minQuantity"`
	OrderQuantity int    `json:"orderQuantity"`
	Location      string `json:"location"`
	ImageURL      string `json:"imageUrl,omitempty"`
	ProductURL    string `json:"productUrl,omitempty"`
}
