package email

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// OrderSummary carries everything the confirmation email renders
type OrderSummary struct {
	OrderID   string
	FirstName string
	Items     []OrderItem
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(summary OrderSummary) string {
	var itemsHTML strings.Builder
	for _, item := range summary.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
			</tr>`,
			name,
			item.Quantity,
			item.Price.StringFixed(2),
			lineTotal.StringFixed(2),
		))
	}

	shipping := "$" + summary.Shipping.StringFixed(2)
	if summary.Shipping.IsZero() {
		shipping = "FREE"
	}

	greeting := "Thank you for your order"
	if summary.FirstName != "" {
		greeting = fmt.Sprintf("Thank you for your order, %s", summary.FirstName)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #d4a5a5 0%%, #9e7bb5 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Your gift boxes are being prepared and will ship soon.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #9e7bb5; padding-bottom: 10px;">Order details</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 6px 12px; text-align: right; color: #666;">Subtotal</td>
				<td style="padding: 6px 12px; text-align: right; width: 120px;">$%s</td>
			</tr>
			<tr>
				<td style="padding: 6px 12px; text-align: right; color: #666;">Shipping</td>
				<td style="padding: 6px 12px; text-align: right;">%s</td>
			</tr>
			<tr>
				<td style="padding: 6px 12px; text-align: right; color: #666;">Tax (HST)</td>
				<td style="padding: 6px 12px; text-align: right;">$%s</td>
			</tr>
			<tr>
				<td style="padding: 12px; text-align: right; font-weight: bold;">Total</td>
				<td style="padding: 12px; text-align: right; font-size: 20px; font-weight: bold; color: #9e7bb5;">$%s</td>
			</tr>
		</table>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This email was sent automatically. If you have any questions, please contact our support team.
		</p>
	</div>
</body>
</html>`, greeting, summary.OrderID, itemsHTML.String(),
		summary.Subtotal.StringFixed(2), shipping, summary.Tax.StringFixed(2), summary.Total.StringFixed(2))
}
