package checkout

import "strings"

// Errors maps a form field name to its validation message
type Errors map[string]string

// Validate checks the whole form in one pass and returns every error
// at once, keyed by field name. An empty map means the form is valid.
// Presence is the only rule; formats (email, card number, expiry) are
// deliberately not checked.
func Validate(form OrderForm) Errors {
	errs := Errors{}

	required := []struct {
		field   string
		value   string
		message string
	}{
		{"email", form.Email, "Email is required"},
		{"phone", form.Phone, "Phone number is required"},
		{"firstName", form.FirstName, "First name is required"},
		{"lastName", form.LastName, "Last name is required"},
		{"address1", form.Address1, "Address is required"},
		{"city", form.City, "City is required"},
		{"postalCode", form.PostalCode, "Postal code is required"},
		{"cardNumber", form.CardNumber, "Card number is required"},
		{"expiryDate", form.ExpiryDate, "Expiry date is required"},
		{"cvv", form.CVV, "CVV is required"},
		{"cardName", form.CardName, "Cardholder name is required"},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.message
		}
	}

	if !form.TermsAccepted {
		errs["termsAccepted"] = "You must accept the terms and conditions"
	}

	return errs
}
