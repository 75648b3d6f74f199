// Package receipt renders an order as a one-page PDF.
package receipt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/bookstore/internal/order"
)

func Render(w io.Writer, o *order.Order, items []order.Item, shipping decimal.Decimal) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Order #%d", o.ID), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Bookstore", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order #%d  -  %s", o.ID, o.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.ZipCode + " " + o.Country,
	} {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{100, 25, 30, 35}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Book", "Qty", "Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range items {
		name := it.BookName
		if name == "" {
			name = "Book #" + strconv.FormatInt(it.BookID, 10)
		}
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, it.Cost().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(2)

	label := widths[0] + widths[1] + widths[2]
	for _, row := range [][2]string{
		{"Subtotal", o.Subtotal(shipping).StringFixed(2)},
		{"Shipping", shipping.StringFixed(2)},
		{"Total", o.Payable.StringFixed(2)},
	} {
		pdf.CellFormat(label, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, row[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	status := "Not paid"
	if o.Paid {
		status = "Paid"
		if o.TransactionID != "" {
			status += " (transaction " + o.TransactionID + ")"
		}
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Payment: "+tr(o.PaymentMethod)+" - "+status, "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}
