package types

import "strings"

// Address is the structured delivery address stored as JSON on an order.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone,omitempty"`
}

// IsComplete reports whether the fields required for delivery are present.
func (a Address) IsComplete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}
