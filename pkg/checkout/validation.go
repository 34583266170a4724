package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/mkitchen/catering-backend/pkg/errors"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	validate     = newValidator()
)

var requiredMessages = map[string]string{
	"firstName":    "First name is required",
	"lastName":     "Last name is required",
	"email":        "Email is required",
	"phone":        "Phone is required",
	"address":      "Address is required",
	"city":         "City is required",
	"state":        "State is required",
	"zipCode":      "ZIP code is required",
	"deliveryDate": "Delivery date is required",
	"deliveryTime": "Delivery time is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a json field name to a human readable message.
type FieldErrors map[string]string

// OK reports whether no field failed.
func (f FieldErrors) OK() bool {
	return len(f) == 0
}

// Err converts the field errors into a validation error, or nil when empty.
func (f FieldErrors) Err() error {
	if f.OK() {
		return nil
	}
	return pkgerrors.InvalidFields("shipping information is invalid", f)
}

// ValidateShipping checks that every mandatory field is non-empty after
// trimming and that the email looks like an address.
func ValidateShipping(info ShippingInfo) FieldErrors {
	fields := FieldErrors{}
	trimmed := info.Trimmed()

	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			fields["_"] = err.Error()
			return fields
		}
		for _, fe := range verrs {
			msg, ok := requiredMessages[fe.Field()]
			if !ok {
				msg = fe.Field() + " is invalid"
			}
			fields[fe.Field()] = msg
		}
	}

	if _, missing := fields["email"]; !missing && !emailPattern.MatchString(trimmed.Email) {
		fields["email"] = "Email is invalid"
	}
	return fields
}

// ValidatePayment only checks the method; card details are never validated.
func ValidatePayment(in PaymentInput) error {
	if !in.Method.IsValid() {
		return pkgerrors.InvalidFields("payment method is invalid", map[string]string{
			"method": "Payment method is invalid",
		})
	}
	return nil
}
