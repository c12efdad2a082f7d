package libs

import (
	"fmt"
	"html"
	"strings"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/go-faster/errors"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	dialer sender
	from   string
}

func NewMailer(host string, port int, user, pass, from string) (*Mailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, errors.New("SMTP configuration missing")
	}
	if from == "" {
		from = user
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}, nil
}

func (m *Mailer) SendOrderConfirmation(toEmail string, receipt models.OrderReceipt, intent models.OrderIntent) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Order confirmation "+receipt.OrderID)
	msg.SetBody("text/html", OrderConfirmationBody(receipt, intent))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "send confirmation")
	}
	return nil
}

func OrderConfirmationBody(receipt models.OrderReceipt, intent models.OrderIntent) string {
	var rows strings.Builder
	for _, line := range intent.Lines {
		fmt.Fprintf(&rows, `<tr><td>%s</td><td>%s</td><td style="text-align:center">%d</td><td style="text-align:right">%s</td></tr>`,
			html.EscapeString(line.ProductName),
			html.EscapeString(describeSelection(line.Selection)),
			line.Quantity,
			services.FormatMoney(intent.Currency, line.LineTotal))
	}

	discount := ""
	if intent.Discount != nil {
		discount = fmt.Sprintf(`<tr><td colspan="3">Discount (%s)</td><td style="text-align:right">-%s</td></tr>`,
			html.EscapeString(intent.Discount.Code),
			services.FormatMoney(intent.Currency, intent.Discount.DiscountAmount))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        table { width: 100%%; border-collapse: collapse; }
        td { padding: 8px 0; border-bottom: 1px solid #eee; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <h2 style="color: #333;">Thank you for your order, %s</h2>
        <p>Order reference: <strong>%s</strong></p>
        <table>
            %s
            <tr><td colspan="3">Subtotal</td><td style="text-align:right">%s</td></tr>
            %s
            <tr><td colspan="3">Delivery</td><td style="text-align:right">%s</td></tr>
            <tr><td colspan="3"><strong>Total</strong></td><td style="text-align:right"><strong>%s</strong></td></tr>
        </table>
        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`,
		html.EscapeString(intent.Customer.FullName),
		html.EscapeString(receipt.OrderID),
		rows.String(),
		services.FormatMoney(intent.Currency, intent.Subtotal),
		discount,
		services.FormatMoney(intent.Currency, intent.Shipping),
		services.FormatMoney(intent.Currency, intent.Total),
	)
}

func describeSelection(sel models.Selection) string {
	parts := make([]string, 0, 7)
	for _, f := range sel.Facets() {
		parts = append(parts, f.Name)
	}
	if sel.AssemblyAdded {
		parts = append(parts, "Assembly")
	}
	return strings.Join(parts, ", ")
}
