// Package inventory builds the flat item ledger. Items are keyed by the exact
// lowercase, trimmed line-item name, which is coarser than the fuzzy key used
// by velocity profiles: "Widget A" and "widget a (sku-1)" share a profile but
// are two inventory items.
package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/resolve"
	"github.com/sells-group/restock/internal/velocity"
)

// Key returns the inventory key for a raw line-item name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type entry struct {
	item       model.InventoryItem
	rawName    string
	nameSource model.NameSource
	orders     map[string]struct{}
	spend      decimal.Decimal
	lastPriced time.Time
}

// Aggregate folds orders into inventory items in first-seen order, using the
// default similarity threshold for duplicate suggestions.
func Aggregate(orders []model.ExtractedOrder) []model.InventoryItem {
	return AggregateWithThreshold(orders, resolve.DefaultThreshold)
}

// AggregateWithThreshold is Aggregate with an explicit similarity threshold
// for PossibleDuplicates.
func AggregateWithThreshold(orders []model.ExtractedOrder, threshold float64) []model.InventoryItem {
	var keys []string
	entries := make(map[string]*entry)

	for _, order := range velocity.Enrich(orders) {
		date := order.Date()
		for _, li := range order.Items {
			key := Key(li.Name)
			e, ok := entries[key]
			if !ok {
				e = newEntry(key, li, order)
				entries[key] = e
				keys = append(keys, key)
			} else {
				e.update(li, order)
			}

			e.orders[order.ID] = struct{}{}
			e.item.History = append(e.item.History, model.HistoryEntry{
				OrderID:  order.ID,
				Date:     date,
				Quantity: li.Quantity,
			})
			e.addSpend(li, date)
		}
	}

	items := make([]model.InventoryItem, 0, len(keys))
	for _, key := range keys {
		items = append(items, entries[key].finalize())
	}
	markDuplicates(items, threshold)
	return items
}

func newEntry(key string, li model.LineItem, order model.ExtractedOrder) *entry {
	name, source := li.DisplayName()
	e := &entry{
		item: model.InventoryItem{
			Key:            key,
			Name:           name,
			NormalizedName: li.NormalizedName,
			Supplier:       order.Supplier,
			SKU:            li.SKU,
			Unit:           li.Unit,
			Location:       li.Location,
			Draft:          true,
		},
		rawName:    li.Name,
		nameSource: source,
		orders:     make(map[string]struct{}),
	}
	e.fillLinks(li.Enrichment)
	return e
}

// update applies a later occurrence. A humanized name replaces the current
// name whenever it differs; a cleaned name only applies while no humanized
// name has been seen.
func (e *entry) update(li model.LineItem, order model.ExtractedOrder) {
	if en := li.Enrichment; en != nil {
		humanized := strings.TrimSpace(en.HumanizedName)
		clean := strings.TrimSpace(en.CleanName)
		switch {
		case humanized != "" && humanized != e.item.Name:
			e.item.Name, e.nameSource = humanized, model.NameSourceHumanized
		case humanized == "" && clean != "" && e.nameSource < model.NameSourceClean:
			e.item.Name, e.nameSource = clean, model.NameSourceClean
		}
	}
	e.fillLinks(li.Enrichment)

	if e.item.Supplier == "" {
		e.item.Supplier = order.Supplier
	}
	if e.item.SKU == "" {
		e.item.SKU = li.SKU
	}
	if e.item.Unit == "" {
		e.item.Unit = li.Unit
	}
	if e.item.Location == "" {
		e.item.Location = li.Location
	}
}

func (e *entry) fillLinks(en *model.Enrichment) {
	if en == nil {
		return
	}
	if e.item.ImageURL == "" {
		e.item.ImageURL = en.ImageURL
	}
	if e.item.ProductURL == "" {
		e.item.ProductURL = en.ProductURL
	}
	if e.item.ExternalID == "" {
		e.item.ExternalID = en.ExternalID
	}
}

func (e *entry) addSpend(li model.LineItem, date time.Time) {
	switch {
	case li.TotalPrice != nil:
		e.spend = e.spend.Add(decimal.NewFromFloat(*li.TotalPrice))
	case li.UnitPrice != nil:
		e.spend = e.spend.Add(decimal.NewFromFloat(li.Quantity).Mul(decimal.NewFromFloat(*li.UnitPrice)))
	}
	if li.UnitPrice != nil && (e.item.LastUnitPrice == nil || !date.Before(e.lastPriced)) {
		price := *li.UnitPrice
		e.item.LastUnitPrice = &price
		e.lastPriced = date
	}
}

func (e *entry) finalize() model.InventoryItem {
	item := e.item
	if e.rawName != item.Name {
		item.OriginalName = e.rawName
	}

	sort.SliceStable(item.History, func(i, j int) bool {
		return item.History[i].Date.Before(item.History[j].Date)
	})

	points := make([]velocity.Demand, len(item.History))
	for i, h := range item.History {
		points[i] = velocity.Demand{Date: h.Date, Quantity: h.Quantity}
	}
	rec := velocity.Recommend(points, len(e.orders))

	item.OrderCount = len(e.orders)
	item.TotalQuantity = rec.TotalQuantity
	item.FirstOrderDate = rec.FirstOrderDate
	item.LastOrderDate = rec.LastOrderDate
	item.AverageCadenceDays = rec.AverageCadenceDays
	item.DailyBurnRate = rec.DailyBurnRate
	item.RecommendedMin = rec.RecommendedMin
	item.RecommendedOrderQty = rec.RecommendedOrderQty
	item.NextPredictedOrder = rec.NextPredictedOrder
	item.TotalSpend = e.spend.Round(2).InexactFloat64()
	return item
}

// markDuplicates lists, for each item, the keys of other items whose
// normalized names are identical or within threshold of its own. Identical
// names come first in ledger order, then fuzzy matches closest first.
func markDuplicates(items []model.InventoryItem, threshold float64) {
	byName := make(map[string][]string)
	for _, item := range items {
		byName[item.NormalizedName] = append(byName[item.NormalizedName], item.Key)
	}

	for i := range items {
		item := &items[i]
		var dupes []string
		for _, key := range byName[item.NormalizedName] {
			if key != item.Key {
				dupes = append(dupes, key)
			}
		}
		for _, m := range resolve.RankSimilar(item.NormalizedName, byName, threshold) {
			dupes = append(dupes, m.Value...)
		}
		item.PossibleDuplicates = dupes
	}
}
