// README: Common money value object used across modules.
package types

import "fmt"

// Money is an amount in whole currency units. The storefront prices
// everything in whole rupees, so no cent scaling is needed.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func Rupees(amount int64) Money {
	return Money{Amount: amount, Currency: "LKR"}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %d", m.Currency, m.Amount)
}
