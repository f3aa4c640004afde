package mailer

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends transactional mail through SendGrid.
type SendGridMailer struct {
	apiKey   string
	from     string
	fromName string
	currency string
}

func NewSendGridMailer(apiKey, from, currency string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:   apiKey,
		from:     from,
		fromName: "Storefront",
		currency: strings.ToUpper(currency),
	}
}

// SendOrderConfirmation mails the order summary to the customer.
func (m *SendGridMailer) SendOrderConfirmation(ctx context.Context, to, name string, order *models.Order) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if m.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	subject := fmt.Sprintf("Order %s confirmed", order.ID.Hex())
	body := OrderConfirmationBody(name, m.currency, order)

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		subject,
		mail.NewEmail(name, to),
		body,
		"<pre>"+html.EscapeString(body)+"</pre>",
	)

	response, err := sendgrid.NewSendClient(m.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	log.Printf("[sendgrid] order confirmation sent: status=%d order=%s", response.StatusCode, order.ID.Hex())
	return nil
}

// OrderConfirmationBody renders the plain-text confirmation.
func OrderConfirmationBody(name, currency string, order *models.Order) string {
	var b strings.Builder
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for your order %s.\n\n", order.ID.Hex())
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s (%s) @ %s %.2f\n", item.Quantity, item.Name, item.Size, currency, item.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %s %.2f\n", currency, order.TotalAmount)
	fmt.Fprintf(&b, "Payment: %s\n", paymentLabel(order.PaymentMethod))
	fmt.Fprintf(&b, "Ship to: %s, %s, %s %s, %s\n",
		order.Address.Street, order.Address.City, order.Address.State,
		order.Address.ZipCode, order.Address.Country)
	return b.String()
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentMethodCOD:
		return "Cash on Delivery"
	case models.PaymentMethodStripe:
		return "Card (Stripe)"
	case models.PaymentMethodRazorpay:
		return "Razorpay"
	}
	return string(m)
}
