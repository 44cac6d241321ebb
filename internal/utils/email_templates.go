package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"dkstore_back_end/internal/models"
)

var statusLabels = map[models.OrderStatus]string{
	models.OrderPending:    "Aguardando confirmação",
	models.OrderProcessing: "Em separação",
	models.OrderShipped:    "Enviado",
	models.OrderDelivered:  "Entregue",
	models.OrderCancelled:  "Cancelado",
}

func statusLabel(s models.OrderStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

var emailFuncs = template.FuncMap{
	"money": func(v decimal.Decimal) string { return "R$ " + v.StringFixed(2) },
}

var orderConfirmationTmpl = template.Must(template.New("order-confirmation").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Pedido confirmado</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Pedido {{.Order.OrderNumber}} confirmado</h2>
		<p>Olá {{.User.Name}},</p>
		<p>Recebemos o seu pedido. Veja os detalhes abaixo.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produto</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Tamanho</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Qtd</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Order.Items}}
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.ProductName}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Size}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{money .TotalPrice}}</td>
				</tr>
			{{- end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{money .Order.TotalAmount}}</td>
				</tr>
			</tfoot>
		</table>
		<p>Entrega em: {{.Order.ShippingAddress.Street}} {{.Order.ShippingAddress.Number}}, {{.Order.ShippingAddress.City}} - {{.Order.ShippingAddress.Zipcode}}</p>
		<p style="margin-top: 30px; color: #555;">Equipe DK Store</p>
	</div>
</body>
</html>`))

var statusUpdateTmpl = template.Must(template.New("status-update").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Atualização do pedido</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Pedido {{.Order.OrderNumber}}</h2>
		<p>Olá {{.User.Name}},</p>
		<p>O status do seu pedido mudou para <strong>{{.Status}}</strong>.</p>
		{{- with .Order.TrackingCode}}
		<p>Código de rastreio: <strong>{{.}}</strong></p>
		{{- end}}
		<p style="margin-top: 30px; color: #555;">Equipe DK Store</p>
	</div>
</body>
</html>`))

func renderOrderConfirmation(user models.User, order models.Order) (string, error) {
	var buf bytes.Buffer
	err := orderConfirmationTmpl.Execute(&buf, map[string]any{"User": user, "Order": order})
	if err != nil {
		return "", fmt.Errorf("render order confirmation: %w", err)
	}
	return buf.String(), nil
}

func renderStatusUpdate(user models.User, order models.Order) (string, error) {
	var buf bytes.Buffer
	err := statusUpdateTmpl.Execute(&buf, map[string]any{
		"User":   user,
		"Order":  order,
		"Status": statusLabel(order.Status),
	})
	if err != nil {
		return "", fmt.Errorf("render status update: %w", err)
	}
	return buf.String(), nil
}
