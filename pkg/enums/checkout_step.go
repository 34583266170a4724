package enums

// CheckoutStep is a position in the linear checkout flow.
type CheckoutStep string

const (
	CheckoutStepShipping  CheckoutStep = "shipping"
	CheckoutStepPayment   CheckoutStep = "payment"
	CheckoutStepReview    CheckoutStep = "review"
	CheckoutStepConfirmed CheckoutStep = "confirmed"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepShipping,
	CheckoutStepPayment,
	CheckoutStepReview,
	CheckoutStepConfirmed,
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == s {
			return true
		}
	}
	return false
}
