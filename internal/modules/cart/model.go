// README: Cart aggregate with the single-merchant invariant.
package cart

import (
	"time"

	"pronto/internal/types"
)

// Item is one selected product line. ID is unique per item+variant.
type Item struct {
	ID         types.ID `json:"id"`
	Name       string   `json:"name"`
	UnitPrice  int64    `json:"unit_price"`
	Quantity   int      `json:"quantity"`
	MerchantID types.ID `json:"merchant_id"`
}

// Cart holds one session's selection. All items belong to MerchantID;
// an empty cart has no merchant.
type Cart struct {
	SessionID  types.ID  `json:"session_id"`
	MerchantID types.ID  `json:"merchant_id"`
	Items      []Item    `json:"items"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Subtotal is the sum of unit price times quantity over all items.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}

// Total is the subtotal as a display amount. Menu prices are whole rupees.
func (c *Cart) Total() types.Money {
	return types.Rupees(c.Subtotal())
}

func (c *Cart) find(itemID types.ID) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
