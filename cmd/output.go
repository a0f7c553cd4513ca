package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/restock/internal/analytics"
	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/store"
)

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatNext(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDay(*t)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// formatProfiles writes a tabular list of velocity profiles to out.
func formatProfiles(out io.Writer, profiles []model.ItemVelocityProfile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ITEM\tSUPPLIER\tORDERS\tQTY\tCADENCE\tBURN/DAY\tMIN\tORDER_QTY\tNEXT")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t---\t-------\t--------\t---\t---------\t----")
	for _, p := range profiles {
		cadence := "-"
		if p.AverageCadenceDays > 0 {
			cadence = fmt.Sprintf("%.0fd", p.AverageCadenceDays)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%.2f\t%d\t%d\t%s\n",
			truncate(p.DisplayName, 40),
			p.Supplier,
			p.OrderCount,
			formatFloat(p.TotalQuantityOrdered),
			cadence,
			p.DailyBurnRate,
			p.RecommendedMin,
			p.RecommendedOrderQty,
			formatNext(p.NextPredictedOrder),
		)
	}
	_ = w.Flush()
}

// formatSimilar writes similarity matches to out.
func formatSimilar(out io.Writer, matches []analytics.SimilarProfile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tDISTANCE\tITEM\tORDERS")
	_, _ = fmt.Fprintln(w, "---\t--------\t----\t------")
	for _, m := range matches {
		_, _ = fmt.Fprintf(w, "%s\t%.3f\t%s\t%d\n", m.Key, m.Distance, truncate(m.Profile.DisplayName, 40), m.Profile.OrderCount)
	}
	_ = w.Flush()
}

// formatInventory writes the inventory ledger to out.
func formatInventory(out io.Writer, items []model.InventoryItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ITEM\tSUPPLIER\tORDERS\tQTY\tSPEND\tMIN\tORDER_QTY\tNEXT\tDUPLICATES")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t---\t-----\t---\t---------\t----\t----------")
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%d\t%d\t%s\t%s\n",
			truncate(item.Name, 40),
			item.Supplier,
			item.OrderCount,
			formatFloat(item.TotalQuantity),
			item.TotalSpend,
			item.RecommendedMin,
			item.RecommendedOrderQty,
			formatNext(item.NextPredictedOrder),
			strings.Join(item.PossibleDuplicates, ", "),
		)
	}
	_ = w.Flush()
}

// formatSyncRecords writes downstream sync records to out.
func formatSyncRecords(out io.Writer, records []model.SyncRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSUPPLIER\tMIN\tORDER_QTY")
	_, _ = fmt.Fprintln(w, "----\t--------\t---\t---------")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", truncate(r.Name, 40), r.Supplier, r.MinQuantity, r.OrderQuantity)
	}
	_ = w.Flush()
}

// formatJourney writes the tree as an indented outline, every node shown.
func formatJourney(out io.Writer, nodes []*model.JourneyNode) {
	writeNodes(out, nodes, 0)
}

func writeNodes(out io.Writer, nodes []*model.JourneyNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		marker := "-"
		if len(n.Children) > 0 {
			marker = "+"
		}
		if n.Subtitle != "" {
			_, _ = fmt.Fprintf(out, "%s%s %s (%s)\n", indent, marker, n.Label, n.Subtitle)
		} else {
			_, _ = fmt.Fprintf(out, "%s%s %s\n", indent, marker, n.Label)
		}
		writeNodes(out, n.Children, depth+1)
	}
}

// formatBatches writes a tabular list of import batches to out.
func formatBatches(out io.Writer, batches []store.Batch) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tORDERS\tMESSAGES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t--------\t-------")
	for _, b := range batches {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			truncateID(b.ID),
			truncate(b.Source, 40),
			b.OrderCount,
			b.MessageCount,
			b.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
