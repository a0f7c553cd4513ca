package loader

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restock/internal/model"
)

// Tabular datasets (CSV, XLSX) carry one line item per row. Rows sharing an
// order id form one order; order-level columns are read from its first row.
// Header names are matched ignoring case, spaces and underscores, so
// "order_id", "Order ID" and "orderId" are the same column.
const (
	colOrderID       = "orderid"
	colMessageID     = "messageid"
	colSupplier      = "supplier"
	colOrderDate     = "orderdate"
	colTotalAmount   = "totalamount"
	colConfidence    = "confidence"
	colItemName      = "itemname"
	colQuantity      = "quantity"
	colUnit          = "unit"
	colUnitPrice     = "unitprice"
	colTotalPrice    = "totalprice"
	colSKU           = "sku"
	colLocation      = "location"
	colHumanizedName = "humanizedname"
	colCleanName     = "cleanname"
	colImageURL      = "imageurl"
	colProductURL    = "producturl"
	colExternalID    = "externalid"
)

func headerKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(s)
}

type columns map[string]int

func newColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[headerKey(h)] = i
	}
	for _, required := range []string{colOrderID, colItemName} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("rows: missing required column %q", required)
		}
	}
	return cols, nil
}

func (c columns) get(row []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) float(row []string, col string, line int) (*float64, error) {
	s := c.get(row, col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(s), 64)
	if err != nil {
		return nil, eris.Wrapf(err, "rows: line %d: invalid %s %q", line, col, s)
	}
	return &v, nil
}

// rowsToDataset groups tabular rows into orders in first-seen order.
func rowsToDataset(header []string, rows [][]string) (*Dataset, error) {
	cols, err := newColumns(header)
	if err != nil {
		return nil, err
	}

	var orders []*model.ExtractedOrder
	index := make(map[string]*model.ExtractedOrder)

	for i, row := range rows {
		line := i + 2 // 1-based, after the header
		if isBlank(row) {
			continue
		}

		id := cols.get(row, colOrderID)
		if id == "" {
			return nil, eris.Errorf("rows: line %d: empty order id", line)
		}

		order, ok := index[id]
		if !ok {
			order, err = newOrder(cols, row, id, line)
			if err != nil {
				return nil, err
			}
			index[id] = order
			orders = append(orders, order)
		}

		item, err := newLineItem(cols, row, line)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	ds := &Dataset{Orders: make([]model.ExtractedOrder, len(orders))}
	for i, o := range orders {
		ds.Orders[i] = *o
	}
	return ds, nil
}

func newOrder(cols columns, row []string, id string, line int) (*model.ExtractedOrder, error) {
	total, err := cols.float(row, colTotalAmount, line)
	if err != nil {
		return nil, err
	}
	confidence, err := cols.float(row, colConfidence, line)
	if err != nil {
		return nil, err
	}

	order := &model.ExtractedOrder{
		ID:              id,
		SourceMessageID: cols.get(row, colMessageID),
		Supplier:        cols.get(row, colSupplier),
		OrderDate:       cols.get(row, colOrderDate),
		TotalAmount:     total,
	}
	if order.SourceMessageID == "" {
		order.SourceMessageID = id
	}
	if confidence != nil {
		order.Confidence = *confidence
	}
	return order, nil
}

func newLineItem(cols columns, row []string, line int) (model.LineItem, error) {
	item := model.LineItem{
		Name:     cols.get(row, colItemName),
		Unit:     cols.get(row, colUnit),
		SKU:      cols.get(row, colSKU),
		Location: cols.get(row, colLocation),
	}

	qty, err := cols.float(row, colQuantity, line)
	if err != nil {
		return item, err
	}
	if qty != nil {
		item.Quantity = *qty
	}
	if item.UnitPrice, err = cols.float(row, colUnitPrice, line); err != nil {
		return item, err
	}
	if item.TotalPrice, err = cols.float(row, colTotalPrice, line); err != nil {
		return item, err
	}

	en := model.Enrichment{
		HumanizedName: cols.get(row, colHumanizedName),
		CleanName:     cols.get(row, colCleanName),
		ImageURL:      cols.get(row, colImageURL),
		ProductURL:    cols.get(row, colProductURL),
		ExternalID:    cols.get(row, colExternalID),
	}
	if en != (model.Enrichment{}) {
		item.Enrichment = &en
	}
	return item, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
