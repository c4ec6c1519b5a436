// Package checkout holds the order form and its validation rules.
package checkout

// OrderForm is the checkout form as submitted by the storefront.
// JSON field names follow the frontend's camelCase convention.
type OrderForm struct {
	// Contact
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Shipping address
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Company    string `json:"company,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`

	// Billing address. SameAsShipping defaults to true on the
	// storefront and the billing fields are never validated
	// separately, matching the store's checkout behavior.
	SameAsShipping    bool   `json:"sameAsShipping"`
	BillingFirstName  string `json:"billingFirstName,omitempty"`
	BillingLastName   string `json:"billingLastName,omitempty"`
	BillingCompany    string `json:"billingCompany,omitempty"`
	BillingAddress1   string `json:"billingAddress1,omitempty"`
	BillingAddress2   string `json:"billingAddress2,omitempty"`
	BillingCity       string `json:"billingCity,omitempty"`
	BillingProvince   string `json:"billingProvince,omitempty"`
	BillingPostalCode string `json:"billingPostalCode,omitempty"`
	BillingCountry    string `json:"billingCountry,omitempty"`

	// Payment
	PaymentMethod string `json:"paymentMethod,omitempty"`
	CardNumber    string `json:"cardNumber"`
	ExpiryDate    string `json:"expiryDate"`
	CVV           string `json:"cvv"`
	CardName      string `json:"cardName"`

	// Additional
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
	MarketingOptIn       bool   `json:"marketingOptIn"`
	TermsAccepted        bool   `json:"termsAccepted"`
}
