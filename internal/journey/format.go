package journey

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/restock/internal/model"
)

var printer = message.NewPrinter(language.AmericanEnglish)

func formatMoney(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// formatNumber renders v with at most the given decimals and no trailing zeros.
func formatNumber(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', -1, 64)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Format("Jan 2, 2006")
}

// lineTotal is the explicit total price, or quantity × unit price computed in
// decimal so cents do not drift.
func lineTotal(item model.LineItem) (float64, bool) {
	if item.TotalPrice != nil {
		return *item.TotalPrice, true
	}
	if item.UnitPrice == nil {
		return 0, false
	}
	total := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(*item.UnitPrice)).Round(2)
	return total.InexactFloat64(), true
}

func orderSubtitle(order model.ExtractedOrder) string {
	items := plural(len(order.Items), "item")
	if order.TotalAmount == nil {
		return items
	}
	return formatMoney(*order.TotalAmount) + " · " + items
}

func lineItemSubtitle(item model.LineItem) string {
	parts := []string{formatNumber(item.Quantity, 2)}
	if item.Unit != "" {
		parts = append(parts, item.Unit)
	}
	if item.UnitPrice != nil {
		parts = append(parts, "@ "+formatMoney(*item.UnitPrice))
	}
	if total, ok := lineTotal(item); ok {
		parts = append(parts, "= "+formatMoney(total))
	}
	return strings.Join(parts, " ")
}

func velocityLabel(burn float64) string {
	return printer.Sprintf("%.2f/day", burn)
}

func velocitySubtitle(p model.ItemVelocityProfile) string {
	return fmt.Sprintf("every %s days · %s", formatNumber(p.AverageCadenceDays, 1), plural(p.OrderCount, "order"))
}
