package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pkg/money"
)

var templates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"money": money.Format,
	"short": func(id uuid.UUID) string { return model.ShortOrderID(id) },
	"lineTotal": func(it model.ConfirmationItem) string {
		return money.Format(money.LineTotal(it.Price, it.Quantity))
	},
}).Parse(`
{{define "layout"}}<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,sans-serif;background:#f5f5f5;margin:0;padding:24px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:32px">
<h1 style="color:#1a1a1a;font-size:22px">{{.Title}}</h1>
{{.Body}}
<p style="color:#888;font-size:12px;margin-top:32px">Benice · <a href="{{.SiteURL}}">{{.SiteURL}}</a></p>
</div>
</body>
</html>{{end}}

{{define "order_confirmation"}}
<p>Hola {{.CustomerName}},</p>
<p>Hemos recibido tu pedido <strong>#{{short .OrderID}}</strong>. Gracias por tu compra.</p>
<table style="width:100%;border-collapse:collapse">
{{range .Items}}<tr><td>{{.Name}} x {{.Quantity}}</td><td style="text-align:right">{{lineTotal .}}</td></tr>
{{end}}</table>
<p>Subtotal: {{money .Subtotal}}</p>
{{if gt .Discount 0.0}}<p>Descuento{{if .PromoCode}} ({{.PromoCode}}){{end}}: -{{money .Discount}}</p>{{end}}
<p><strong>Total: {{money .Total}}</strong></p>
{{if .ShippingAddress}}<p>Envío a: {{.ShippingAddress}}</p>{{end}}
{{end}}

{{define "shipping"}}
<p>Hola {{.CustomerName}},</p>
<p>Tu pedido <strong>#{{short .OrderID}}</strong> está en camino con {{.Carrier}}.</p>
<p>Número de seguimiento: <strong>{{.TrackingNumber}}</strong></p>
{{end}}

{{define "delivered"}}
<p>Hola {{.CustomerName}},</p>
<p>Tu pedido <strong>#{{short .OrderID}}</strong> ha sido entregado. Esperamos que lo disfrutes.</p>
{{end}}

{{define "cancellation_approved"}}
<p>Hola {{.CustomerName}},</p>
<p>Tu pedido <strong>#{{short .OrderID}}</strong> ha sido cancelado.</p>
{{if gt .Total 0.0}}<p>Te reembolsaremos {{money .Total}} en el mismo método de pago.</p>{{end}}
{{end}}

{{define "cancellation_rejected"}}
<p>Hola {{.CustomerName}},</p>
<p>No hemos podido aprobar la cancelación del pedido <strong>#{{short .OrderID}}</strong>.</p>
{{if .Notes}}<p>Motivo: {{.Notes}}</p>{{end}}
{{end}}

{{define "welcome"}}
<p>Hola {{.Name}},</p>
<p>Tu cuenta en Benice está lista.</p>
{{end}}

{{define "newsletter"}}
<p>Gracias por suscribirte.</p>
<p>Tu código de descuento del 10%: <strong>{{.PromoCode}}</strong></p>
{{end}}

{{define "contact"}}
<p><strong>Nombre:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Asunto:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>
{{end}}
`))

type layoutData struct {
	Title   string
	Body    template.HTML
	SiteURL string
}

func render(name, title, siteURL string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	var out bytes.Buffer
	err := templates.ExecuteTemplate(&out, "layout", layoutData{
		Title:   title,
		Body:    template.HTML(body.String()), //nolint:gosec // body was escaped by html/template
		SiteURL: siteURL,
	})
	if err != nil {
		return "", fmt.Errorf("render layout: %w", err)
	}
	return out.String(), nil
}
