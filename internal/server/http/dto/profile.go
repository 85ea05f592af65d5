package dto

// AddressPayload is a postal address.
type AddressPayload struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ProfileRequest updates the caller's contact data.
type ProfileRequest struct {
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Address  AddressPayload `json:"address"`
}

// CustomerDataResponse pre-fills the checkout form.
type CustomerDataResponse struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Address AddressPayload `json:"address"`
}
