package inventory

import "github.com/sells-group/restock/internal/model"

// ToSyncRecord maps an inventory item onto the downstream inventory record.
// The field mapping is a stable contract.
func ToSyncRecord(item model.InventoryItem) model.SyncRecord {
	return model.SyncRecord{
		Name:          item.Name,
		Supplier:      item.Supplier,
		MinQuantity:   item.RecommendedMin,
		OrderQuantity: item.RecommendedOrderQty,
		Location:      item.Location,
		ImageURL:      item.ImageURL,
		ProductURL:    item.ProductURL,
	}
}

// SyncRecords maps items in order.
func SyncRecords(items []model.InventoryItem) []model.SyncRecord {
	out := make([]model.SyncRecord, len(items))
	for i, item := range items {
		out[i] = ToSyncRecord(item)
	}
	return out
}
