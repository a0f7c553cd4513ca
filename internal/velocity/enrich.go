// Package velocity folds purchase orders into per-product demand profiles
// with reorder recommendations.
package velocity

import (
	"fmt"

	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/resolve"
)

// Enrich returns copies of orders whose line items carry a stable id, a
// normalized name, an extracted SKU and references to their source order and
// message. Values already set upstream are kept, except the two source
// references, which are always restamped from the parent order.
func Enrich(orders []model.ExtractedOrder) []model.ExtractedOrder {
	out := make([]model.ExtractedOrder, len(orders))
	for i, order := range orders {
		enriched := order
		enriched.Items = make([]model.LineItem, len(order.Items))
		for j, item := range order.Items {
			if item.ID == "" {
				item.ID = fmt.Sprintf("%s-item-%d", order.ID, j)
			}
			if item.NormalizedName == "" {
				item.NormalizedName = resolve.Normalize(item.Name)
			}
			if item.SKU == "" {
				item.SKU = resolve.ExtractSKU(item.Name)
			}
			if item.Enrichment != nil {
				e := *item.Enrichment
				item.Enrichment = &e
			}
			item.SourceOrderID = order.ID
			item.SourceMessageID = order.SourceMessageID
			enriched.Items[j] = item
		}
		out[i] = enriched
	}
	return out
}
