// Package cart holds the cart collaborator request and result types.
package cart

// Item is one cart line change.
type Item struct {
	UserID   string `json:"userId"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Result is the outcome of a cart call. Simulated is set when the cart
// service was unreachable and success was assumed locally.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Simulated bool   `json:"simulated"`
	Count     int    `json:"count,omitempty"`
}
