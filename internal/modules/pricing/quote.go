package pricing

import "math"

// Quote computes the delivery charge breakdown for a distance and item
// subtotal. Pure and total: any finite non-negative input pair yields a
// breakdown without I/O or panics. A non-positive distance means pickup
// or an unset location, so both fees are zero.
func (p Policy) Quote(distanceKm float64, subtotal int64) Breakdown {
	b := Breakdown{
		DistanceKm: distanceKm,
		Subtotal:   subtotal,
		Currency:   p.Currency,
	}
	if distanceKm <= 0 {
		b.GrandTotal = subtotal
		return b
	}

	courier := p.courierBase(distanceKm)
	switch {
	case p.SurchargeHighAt > 0 && subtotal >= p.SurchargeHighAt:
		courier += float64(p.SurchargeHighFee)
	case p.SurchargeMediumAt > 0 && subtotal >= p.SurchargeMediumAt:
		courier += float64(p.SurchargeMediumFee)
	}
	b.CourierFee = int64(math.Round(courier))

	if distanceKm <= p.HandlingNearKm {
		b.HandlingFee = p.HandlingNearFee
	} else {
		b.HandlingFee = p.HandlingFarFee
	}

	b.GrandTotal = subtotal + b.CourierFee + b.HandlingFee
	return b
}

func (p Policy) courierBase(distanceKm float64) float64 {
	for _, band := range p.Bands {
		if distanceKm <= band.MaxKm {
			return float64(band.Fee)
		}
	}
	return distanceKm * float64(p.PerKmFee)
}
