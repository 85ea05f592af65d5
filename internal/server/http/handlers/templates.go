package handlers

import "html/template"

const (
	checkoutSuccessTemplate    = "checkout_success"
	checkoutProcessingTemplate = "checkout_processing"
	checkoutRefundedTemplate   = "checkout_refunded"
)

const pageLayout = `{{define "head"}}<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>{{.Title}} | Benice</title>
</head>
<body>
<main>{{end}}
{{define "foot"}}</main>
</body>
</html>{{end}}`

const checkoutPages = `{{define "checkout_success"}}{{template "head" .}}
<h1>¡Gracias por tu compra!</h1>
<p>Tu pedido <strong>{{.OrderID}}</strong> se ha registrado correctamente.</p>
<p>Te hemos enviado un email de confirmación con los detalles.</p>
<p><a href="/cuenta/pedidos">Ver mis pedidos</a></p>
{{template "foot" .}}{{end}}
{{define "checkout_processing"}}{{template "head" .}}
<h1>Estamos procesando tu pago</h1>
<p>Tu pago se está procesando. En unos minutos verás tu pedido en tu cuenta y recibirás un email de confirmación.</p>
<p>Si tienes cualquier duda, <a href="/info/contacto">contacta con nosotros</a>.</p>
{{template "foot" .}}{{end}}
{{define "checkout_refunded"}}{{template "head" .}}
<h1>No hemos podido completar tu pedido</h1>
<p>Algún producto ya no estaba disponible, así que te hemos devuelto el importe íntegro. El reembolso aparecerá en tu cuenta en unos días.</p>
<p>Si tienes cualquier duda, <a href="/info/contacto">contacta con nosotros</a>.</p>
{{template "foot" .}}{{end}}`

// Templates returns the server-rendered pages used by the handlers.
func Templates() *template.Template {
	return template.Must(template.Must(template.New("pages").Parse(pageLayout)).Parse(checkoutPages))
}
