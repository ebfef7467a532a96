package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/tealeg/xlsx"
)

var (
	orderHeaders = []string{
		"Order Number", "Date", "Status", "Payment Method", "Payment Status",
		"Items", "Subtotal", "Shipping", "Tax", "Total", "Ship To",
	}
	itemHeaders = []string{
		"Order Number", "Product", "Quantity", "Unit Price", "Line Total",
	}
)

// ExportFilename is the attachment name for a user's history workbook.
func ExportFilename(userID int64) string {
	return fmt.Sprintf("orders-%d.xlsx", userID)
}

// Export builds an order history workbook with an Orders sheet and an Items
// sheet.
func (s *Service) Export(ctx context.Context, userID int64) (*xlsx.File, error) {
	list, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to export orders", err)
	}
	items, err := s.store.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to export orders", err)
	}

	file := xlsx.NewFile()
	orderSheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, apperr.Internal("Failed to create Excel sheet", err)
	}
	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return nil, apperr.Internal("Failed to create Excel sheet", err)
	}

	header := orderSheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetValue(h)
	}
	header = itemSheet.AddRow()
	for _, h := range itemHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range list {
		addr := o.ShippingAddress
		shipTo := strings.Join(nonEmpty(addr.Name, addr.Street, addr.City, addr.State, addr.Zip, addr.Country), ", ")

		row := orderSheet.AddRow()
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(string(o.PaymentMethod))
		row.AddCell().SetValue(o.PaymentStatus)
		row.AddCell().SetValue(len(items[o.ID]))
		row.AddCell().SetValue(o.Subtotal.InexactFloat64())
		row.AddCell().SetValue(o.Shipping.InexactFloat64())
		row.AddCell().SetValue(o.Tax.InexactFloat64())
		row.AddCell().SetValue(o.Total.InexactFloat64())
		row.AddCell().SetValue(shipTo)

		for _, it := range items[o.ID] {
			r := itemSheet.AddRow()
			r.AddCell().SetValue(o.OrderNumber)
			r.AddCell().SetValue(it.ProductName)
			r.AddCell().SetValue(it.Quantity)
			r.AddCell().SetValue(it.Price.InexactFloat64())
			r.AddCell().SetValue(it.LineTotal().InexactFloat64())
		}
	}
	return file, nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
