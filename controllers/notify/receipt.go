package notifyControllers

import (
	"fmt"
	"strings"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
)

func formatCurrency(value float64) string {
	return fmt.Sprintf("PHP %.2f", value)
}

func buildReceiptHTML(order *models.Order, buyerName string) string {
	if buyerName == "" {
		buyerName = "Customer"
	}

	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding:8px 0;border-bottom:1px solid #e5e7eb;">%s</td>`+
				`<td style="padding:8px 0;border-bottom:1px solid #e5e7eb;text-align:center;">%d</td>`+
				`<td style="padding:8px 0;border-bottom:1px solid #e5e7eb;text-align:right;">%s</td></tr>`,
			item.ProductName, item.Quantity, formatCurrency(item.UnitPrice),
		))
	}

	addr := order.Address
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="margin:0;padding:0;background:#f1f5f9;font-family:Arial, sans-serif;">
    <div style="max-width:720px;margin:24px auto;background:#ffffff;border:1px solid #e2e8f0;border-radius:16px;overflow:hidden;">
      <div style="background:#2563eb;color:#ffffff;padding:24px 28px;">
        <div style="font-size:20px;font-weight:bold;">DaingGrader Receipt</div>
        <div style="font-size:14px;opacity:0.9;margin-top:6px;">Thank you for your purchase, %s!</div>
      </div>
      <div style="padding:24px 28px;color:#0f172a;">
        <table style="width:100%%;border-collapse:collapse;font-size:14px;margin-bottom:18px;">
          <tr><td style="padding:6px 0;color:#64748b;">Order Number</td><td style="padding:6px 0;text-align:right;font-weight:600;">%s</td></tr>
          <tr><td style="padding:6px 0;color:#64748b;">Order Date</td><td style="padding:6px 0;text-align:right;">%s</td></tr>
          <tr><td style="padding:6px 0;color:#64748b;">Payment Method</td><td style="padding:6px 0;text-align:right;">%s</td></tr>
        </table>
        <div style="border:1px solid #e2e8f0;border-radius:12px;padding:16px 18px;margin-bottom:18px;">
          <div style="font-weight:bold;margin-bottom:8px;">Shipping Address</div>
          <div style="color:#334155;line-height:1.5;">
            <div>%s</div><div>%s</div><div>%s %s %s</div><div>%s</div>
          </div>
        </div>
        <table style="width:100%%;border-collapse:collapse;font-size:14px;">
          <thead><tr style="border-bottom:2px solid #e2e8f0;">
            <th style="text-align:left;padding-bottom:8px;">Item</th>
            <th style="text-align:center;padding-bottom:8px;">Qty</th>
            <th style="text-align:right;padding-bottom:8px;">Price</th>
          </tr></thead>
          <tbody>%s</tbody>
        </table>
        <div style="margin-top:16px;padding-top:16px;border-top:1px solid #e2e8f0;font-size:15px;font-weight:bold;text-align:right;">
          Total: %s
        </div>
      </div>
    </div>
  </body>
</html>`,
		buyerName,
		order.OrderNumber,
		order.CreatedAt.Format("January 2, 2006"),
		order.PaymentMethod,
		addr.FullName, addr.Line, addr.City, addr.Province, addr.PostalCode, addr.Phone,
		rows.String(),
		formatCurrency(order.TotalAmount),
	)
}

func buildSellerNoticeHTML(order *models.Order, sellerName string) string {
	if sellerName == "" {
		sellerName = "Seller"
	}

	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf("<li>%s × %d — %s</li>", item.ProductName, item.Quantity, formatCurrency(item.UnitPrice)))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family:Arial, sans-serif;color:#0f172a;">
    <h2>New order %s</h2>
    <p>Hi %s, you have a new order to fulfill.</p>
    <ul>%s</ul>
    <p><strong>Total: %s</strong> (%s)</p>
    <p>Ship to: %s, %s, %s %s %s — %s</p>
  </body>
</html>`,
		order.OrderNumber, sellerName, rows.String(),
		formatCurrency(order.TotalAmount), order.PaymentMethod,
		order.Address.FullName, order.Address.Line, order.Address.City,
		order.Address.Province, order.Address.PostalCode, order.Address.Phone,
	)
}
