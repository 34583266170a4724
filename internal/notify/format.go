package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/orders"
)

const noInstructions = "None"

// Money renders an amount with two decimal places and a dollar sign.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

type emailItem struct {
	Quantity  int
	Name      string
	Price     string
	LineTotal string
}

type emailView struct {
	OrderID         string
	OrderTime       string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryDate    string
	DeliveryTime    string
	DeliveryAddress string
	Items           []emailItem
	Subtotal        string
	DeliveryFee     string
	ServiceCharge   string
	Tax             string
	Total           string
	PaymentLabel    string
	Instructions    string
}

var emailHTML = template.Must(template.New("order_email").Parse(`<h2>New M Kitchen Order {{.OrderID}}</h2>
<p><strong>Placed:</strong> {{.OrderTime}}</p>
<h3>Customer</h3>
<p>{{.CustomerName}}<br>{{.CustomerEmail}}<br>{{.CustomerPhone}}</p>
<h3>Delivery</h3>
<p>{{.DeliveryDate}} at {{.DeliveryTime}}<br>{{.DeliveryAddress}}</p>
<h3>Items</h3>
<ul>{{range .Items}}<li>{{.Quantity}} × {{.Name}} - {{.Price}} each = {{.LineTotal}}</li>{{end}}</ul>
<h3>Amount</h3>
<p>Subtotal: {{.Subtotal}}<br>Delivery fee: {{.DeliveryFee}}<br>Service charge: {{.ServiceCharge}}<br>Tax: {{.Tax}}<br><strong>Total: {{.Total}}</strong></p>
<p><strong>Payment:</strong> {{.PaymentLabel}}</p>
<p><strong>Special instructions:</strong> {{.Instructions}}</p>
`))

func newEmailView(rec *orders.Record) emailView {
	items := make([]emailItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, emailItem{
			Quantity:  it.Quantity,
			Name:      it.Name,
			Price:     Money(it.Price),
			LineTotal: Money(it.LineTotal),
		})
	}
	instructions := strings.TrimSpace(rec.Customer.SpecialInstructions)
	if instructions == "" {
		instructions = noInstructions
	}
	return emailView{
		OrderID:         rec.ID,
		OrderTime:       rec.CreatedAt.UTC().Format(time.RFC1123),
		CustomerName:    rec.Customer.FullName(),
		CustomerEmail:   rec.Customer.Email,
		CustomerPhone:   rec.Customer.Phone,
		DeliveryDate:    rec.Customer.DeliveryDate,
		DeliveryTime:    rec.Customer.DeliveryTime,
		DeliveryAddress: rec.Customer.DeliveryAddress(),
		Items:           items,
		Subtotal:        Money(rec.Pricing.Subtotal),
		DeliveryFee:     Money(rec.Pricing.DeliveryFee),
		ServiceCharge:   Money(rec.Pricing.ServiceCharge),
		Tax:             Money(rec.Pricing.Tax),
		Total:           Money(rec.Pricing.Total),
		PaymentLabel:    rec.Payment.Method.Label(),
		Instructions:    instructions,
	}
}

// EmailSubject is the subject line of the staff order email.
func EmailSubject(rec *orders.Record) string {
	return fmt.Sprintf("New Order %s - %s", rec.ID, rec.Customer.FullName())
}

// EmailHTML renders the staff order email body.
func EmailHTML(rec *orders.Record) (string, error) {
	var buf bytes.Buffer
	if err := emailHTML.Execute(&buf, newEmailView(rec)); err != nil {
		return "", fmt.Errorf("render order email: %w", err)
	}
	return buf.String(), nil
}

// EmailText renders the plain-text alternative of the order email.
func EmailText(rec *orders.Record) string {
	v := newEmailView(rec)
	var b strings.Builder
	fmt.Fprintf(&b, "New M Kitchen Order %s\nPlaced: %s\n\n", v.OrderID, v.OrderTime)
	fmt.Fprintf(&b, "Customer: %s\nEmail: %s\nPhone: %s\n\n", v.CustomerName, v.CustomerEmail, v.CustomerPhone)
	fmt.Fprintf(&b, "Delivery: %s at %s\n%s\n\nItems:\n", v.DeliveryDate, v.DeliveryTime, v.DeliveryAddress)
	for _, it := range v.Items {
		fmt.Fprintf(&b, "- %d × %s - %s each = %s\n", it.Quantity, it.Name, it.Price, it.LineTotal)
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nDelivery fee: %s\nService charge: %s\nTax: %s\nTotal: %s\n\n",
		v.Subtotal, v.DeliveryFee, v.ServiceCharge, v.Tax, v.Total)
	fmt.Fprintf(&b, "Payment: %s\nSpecial instructions: %s\n", v.PaymentLabel, v.Instructions)
	return b.String()
}

// SMSBody renders the short staff text message.
func SMSBody(rec *orders.Record) string {
	return fmt.Sprintf("M Kitchen New Order!\nOrder: %s\nCustomer: %s\nTotal: %s\nDelivery: %s\nPhone: %s\n---\nCheck email for full details.",
		rec.ID,
		rec.Customer.FullName(),
		Money(rec.Pricing.Total),
		rec.Customer.DeliveryTime,
		rec.Customer.Phone,
	)
}
