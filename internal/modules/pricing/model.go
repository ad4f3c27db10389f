// README: Delivery fee policy and breakdown definitions.
package pricing

import "errors"

// Band is one step of the courier fee table: any distance up to MaxKm
// (inclusive) pays Fee.
type Band struct {
	MaxKm float64 `json:"max_km"`
	Fee   int64   `json:"fee"`
}

// Policy holds the business parameters of the delivery charge. Band
// boundaries and rates are operator-tunable, not algorithmic constants;
// they live in the pricing table and fall back to configured defaults.
type Policy struct {
	// Courier fee: banded up to the last band, flat per-km beyond it.
	Bands    []Band `json:"bands"`
	PerKmFee int64  `json:"per_km_fee"`

	// Handling fee: one value up to HandlingNearKm, a saturated value beyond.
	HandlingNearKm  float64 `json:"handling_near_km"`
	HandlingNearFee int64   `json:"handling_near_fee"`
	HandlingFarFee  int64   `json:"handling_far_fee"`

	// Order-value surcharge applied to the courier fee only.
	SurchargeMediumAt  int64 `json:"surcharge_medium_at"`
	SurchargeMediumFee int64 `json:"surcharge_medium_fee"`
	SurchargeHighAt    int64 `json:"surcharge_high_at"`
	SurchargeHighFee   int64 `json:"surcharge_high_fee"`

	Currency string `json:"currency"`
}

// Breakdown is the delivery charge for one distance/subtotal pair. It is
// recomputed whenever either input changes and never stored on its own;
// only the totals end up on the submitted order.
type Breakdown struct {
	DistanceKm  float64 `json:"distance_km"`
	Subtotal    int64   `json:"subtotal"`
	CourierFee  int64   `json:"courier_fee"`
	HandlingFee int64   `json:"handling_fee"`
	GrandTotal  int64   `json:"grand_total"`
	Currency    string  `json:"currency"`
}

// DefaultPolicy is the launch fee schedule, used as the fallback when
// the stored policy is missing or invalid. Amounts are rupees.
func DefaultPolicy() Policy {
	return Policy{
		Bands: []Band{
			{MaxKm: 2, Fee: 120},
			{MaxKm: 4, Fee: 180},
			{MaxKm: 6, Fee: 240},
			{MaxKm: 8, Fee: 300},
			{MaxKm: 10, Fee: 360},
			{MaxKm: 12, Fee: 420},
		},
		PerKmFee:           40,
		HandlingNearKm:     5,
		HandlingNearFee:    60,
		HandlingFarFee:     100,
		SurchargeMediumAt:  5000,
		SurchargeMediumFee: 100,
		SurchargeHighAt:    8000,
		SurchargeHighFee:   200,
		Currency:           "LKR",
	}
}

var (
	ErrEmptyPolicy      = errors.New("pricing: policy has no bands and no per-km fee")
	ErrBandsUnsorted    = errors.New("pricing: bands must be sorted by max_km")
	ErrBandsNonMonotone = errors.New("pricing: band fees must be non-decreasing")
)

// Validate rejects policies that would break courier-fee monotonicity.
func (p Policy) Validate() error {
	if len(p.Bands) == 0 && p.PerKmFee <= 0 {
		return ErrEmptyPolicy
	}
	for i := 1; i < len(p.Bands); i++ {
		if p.Bands[i].MaxKm <= p.Bands[i-1].MaxKm {
			return ErrBandsUnsorted
		}
		if p.Bands[i].Fee < p.Bands[i-1].Fee {
			return ErrBandsNonMonotone
		}
	}
	if len(p.Bands) > 0 {
		last := p.Bands[len(p.Bands)-1]
		// Just past the last band the per-km rate takes over; it must not
		// undercut the last band fee.
		if float64(p.PerKmFee)*last.MaxKm < float64(last.Fee) {
			return ErrBandsNonMonotone
		}
	}
	return nil
}
