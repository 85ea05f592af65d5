// Package invoicepdf renders invoices and credit notes as PDF documents.
package invoicepdf

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pkg/money"
)

// Seller identifies the issuing shop on every document.
type Seller struct {
	Name    string
	TaxID   string
	Address string
	Email   string
}

// DefaultSeller is printed when no seller is configured.
var DefaultSeller = Seller{
	Name:    "Benice Pet Shop",
	Address: "España",
	Email:   "pedidos@benice.es",
}

// Document is everything printed on one invoice.
type Document struct {
	Invoice       model.Invoice
	Order         model.Order
	CustomerName  string
	CustomerEmail string
}

// Renderer produces PDF bytes.
type Renderer struct {
	seller Seller
}

// New returns a renderer for seller.
func New(seller Seller) *Renderer {
	if seller.Name == "" {
		seller = DefaultSeller
	}
	return &Renderer{seller: seller}
}

// Render lays out doc and returns the encoded PDF.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := "Factura"
	if doc.Invoice.Type == model.InvoiceTypeCreditNote {
		title = "Factura rectificativa"
	}

	m.AddRow(12,
		text.NewCol(8, r.seller.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New(r.seller.Address, props.Text{Size: 9}),
			text.New(r.seller.TaxID, props.Text{Size: 9, Top: 4}),
			text.New(r.seller.Email, props.Text{Size: 9, Top: 8}),
		),
		col.New(6).Add(
			text.New("Número: "+doc.Invoice.Number, props.Text{Size: 9, Align: align.Right}),
			text.New("Fecha: "+doc.Invoice.CreatedAt.Format("02/01/2006"), props.Text{Size: 9, Top: 4, Align: align.Right}),
			text.New("Pedido: #"+model.ShortOrderID(doc.Order.ID), props.Text{Size: 9, Top: 8, Align: align.Right}),
		),
	)

	m.AddRow(28,
		col.New(12).Add(
			text.New("Cliente", props.Text{Size: 10, Style: fontstyle.Bold}),
			text.New(doc.CustomerName, props.Text{Size: 9, Top: 5}),
			text.New(doc.CustomerEmail, props.Text{Size: 9, Top: 9}),
			text.New(shippingLine(doc.Order.ShippingAddress), props.Text{Size: 9, Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Producto", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Cantidad", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Precio", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Importe", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	sign := 1.0
	if doc.Invoice.Type == model.InvoiceTypeCreditNote {
		sign = -1
	}
	for _, item := range doc.Order.Items {
		line := money.LineTotal(item.Price, item.Quantity)
		m.AddRow(8,
			text.NewCol(6, item.ProductName, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.Format(item.Price), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.Format(sign*line), props.Text{Size: 9, Align: align.Right}),
		)
	}

	if doc.Order.DiscountAmount > 0 && doc.Invoice.Type == model.InvoiceTypeInvoice {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "Descuento "+doc.Order.PromoCode, props.Text{Size: 9}),
			text.NewCol(2, money.Format(-doc.Order.DiscountAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Base imponible", props.Text{Size: 9}),
		text.NewCol(2, money.Format(doc.Invoice.Subtotal), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "IVA 21%", props.Text{Size: 9}),
		text.NewCol(2, money.Format(doc.Invoice.TaxAmount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(2, money.Format(doc.Invoice.Total), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}

	return pdf.GetBytes(), nil
}

// FileName is the download name for an invoice.
func FileName(inv model.Invoice) string {
	return strings.ToLower(inv.Number) + ".pdf"
}

func shippingLine(s *model.ShippingDetails) string {
	if s == nil || s.Address.IsZero() {
		return ""
	}
	if s.Name == "" {
		return s.Address.String()
	}
	return s.Name + ", " + s.Address.String()
}
