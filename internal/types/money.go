// README: Common money value object used across modules.
package types

// DefaultCurrency is used when a quote or order does not carry one.
const DefaultCurrency = "INR"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
