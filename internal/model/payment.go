package model

// PaymentMethod is reference data shown in the booking dialog.
type PaymentMethod struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	ImageURL             string `json:"image_url,omitempty"`
	VirtualAccountNumber string `json:"virtual_account_number,omitempty"`
	VirtualAccountName   string `json:"virtual_account_name,omitempty"`
}

// FindPaymentMethod returns the method with id, if present.
func FindPaymentMethod(methods []PaymentMethod, id int64) (PaymentMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
