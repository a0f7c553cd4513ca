package velocity

import (
	"sort"

	"github.com/sells-group/restock/internal/model"
)

// accumulator collects one product's occurrences during the fold.
type accumulator struct {
	profile    model.ItemVelocityProfile
	nameSource model.NameSource
}

// Build enriches orders and folds every line item into a profile keyed by its
// normalized name. Any input, including none, yields a map without error.
func Build(orders []model.ExtractedOrder) map[string]model.ItemVelocityProfile {
	return BuildEnriched(Enrich(orders))
}

// BuildEnriched is Build for orders that already went through Enrich.
func BuildEnriched(enriched []model.ExtractedOrder) map[string]model.ItemVelocityProfile {
	accs := make(map[string]*accumulator)

	for _, order := range enriched {
		date := order.Date()
		for _, item := range order.Items {
			acc, ok := accs[item.NormalizedName]
			if !ok {
				acc = newAccumulator(item, order)
				accs[item.NormalizedName] = acc
			} else {
				acc.improve(item, order)
			}

			p := &acc.profile
			p.Occurrences = append(p.Occurrences, model.Occurrence{
				OrderID:         order.ID,
				SourceMessageID: order.SourceMessageID,
				Date:            date,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
			})
		}
	}

	profiles := make(map[string]model.ItemVelocityProfile, len(accs))
	for key, acc := range accs {
		profiles[key] = finalize(acc.profile)
	}
	return profiles
}

func newAccumulator(item model.LineItem, order model.ExtractedOrder) *accumulator {
	name, src := item.DisplayName()
	acc := &accumulator{
		profile: model.ItemVelocityProfile{
			NormalizedName: item.NormalizedName,
			DisplayName:    name,
			Supplier:       order.Supplier,
			SKU:            item.SKU,
		},
		nameSource: src,
	}
	if e := item.Enrichment; e != nil {
		acc.profile.ImageURL = e.ImageURL
		acc.profile.ProductURL = e.ProductURL
		acc.profile.ExternalID = e.ExternalID
	}
	return acc
}

// improve takes better identity data from a later occurrence. Stored values
// are only ever upgraded: a better-sourced display name, or links that were
// missing until now.
func (a *accumulator) improve(item model.LineItem, order model.ExtractedOrder) {
	p := &a.profile
	if name, src := item.DisplayName(); src > a.nameSource {
		p.DisplayName = name
		a.nameSource = src
	}
	if p.SKU == "" {
		p.SKU = item.SKU
	}
	if p.Supplier == "" {
		p.Supplier = order.Supplier
	}
	e := item.Enrichment
	if e == nil {
		return
	}
	if p.ImageURL == "" {
		p.ImageURL = e.ImageURL
	}
	if p.ProductURL == "" {
		p.ProductURL = e.ProductURL
	}
	if p.ExternalID == "" {
		p.ExternalID = e.ExternalID
	}
}

// finalize derives the statistics once every occurrence has been folded in.
func finalize(p model.ItemVelocityProfile) model.ItemVelocityProfile {
	orderIDs := make(map[string]struct{}, len(p.Occurrences))
	points := make([]Demand, len(p.Occurrences))
	for i, occ := range p.Occurrences {
		orderIDs[occ.OrderID] = struct{}{}
		points[i] = Demand{Date: occ.Date, Quantity: occ.Quantity}
	}
	p.OrderCount = len(orderIDs)

	sort.SliceStable(p.Occurrences, func(i, j int) bool {
		return p.Occurrences[i].Date.Before(p.Occurrences[j].Date)
	})

	rec := Recommend(points, p.OrderCount)
	p.TotalQuantityOrdered = rec.TotalQuantity
	p.FirstOrderDate = rec.FirstOrderDate
	p.LastOrderDate = rec.LastOrderDate
	p.AverageCadenceDays = rec.AverageCadenceDays
	p.DailyBurnRate = rec.DailyBurnRate
	p.RecommendedMin = rec.RecommendedMin
	p.RecommendedOrderQty = rec.RecommendedOrderQty
	p.NextPredictedOrder = rec.NextPredictedOrder
	return p
}

// Sorted returns profiles ordered by daily burn rate, highest first, then by
// normalized name.
func Sorted(profiles map[string]model.ItemVelocityProfile) []model.ItemVelocityProfile {
	out := make([]model.ItemVelocityProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DailyBurnRate != out[j].DailyBurnRate {
			return out[i].DailyBurnRate > out[j].DailyBurnRate
		}
		return out[i].NormalizedName < out[j].NormalizedName
	})
	return out
}
