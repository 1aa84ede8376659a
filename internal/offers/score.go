package offers

import (
	"encoding/json"

	"boligmatch-backend/internal/config"
	"boligmatch-backend/internal/domain"
)

// Above the expected price the price component keeps growing, but at a
// quarter of the slope, capped shortly after. Sellers value realistic
// estimates over bluffed ones.
const (
	overpriceSlope = 0.25
	overpriceCap   = 1.1
)

// Score computes the competitiveness score of an offer against its case,
// in [0,100]. Deterministic: identical inputs always yield the identical
// score. Weights and reference knobs come from configuration, never from
// per-offer state.
func Score(o *domain.Offer, c *domain.Case, cfg config.ScoringConfig) float64 {
	total := cfg.PriceWeight*priceScore(o.ExpectedPrice, c.ExpectedPrice) +
		cfg.CommissionWeight*commissionScore(o.Commission, o.ExpectedPrice, cfg.CommissionCapFrac) +
		cfg.MarketingWeight*marketingScore(o.MarketingChannels, cfg.MarketingChannels) +
		cfg.BindingWeight*bindingScore(o.BindingPeriodMonths, cfg.BindingFloorMonths, cfg.BindingCapMonths)
	return clamp01(total) * 100
}

// PriceDeviation returns the offer price's relative deviation from the
// case's expected price (0.05 = 5% above). Zero when no expectation is set.
func PriceDeviation(o *domain.Offer, c *domain.Case) float64 {
	if c.ExpectedPrice <= 0 {
		return 0
	}
	return (o.ExpectedPrice - c.ExpectedPrice) / c.ExpectedPrice
}

// priceScore is monotonically non-decreasing in the offer/expected ratio,
// with diminishing returns above 100%.
func priceScore(offerPrice, expectedPrice float64) float64 {
	if expectedPrice <= 0 || offerPrice <= 0 {
		return 0
	}
	r := offerPrice / expectedPrice
	if r > 1 {
		r = 1 + (r-1)*overpriceSlope
		if r > overpriceCap {
			r = overpriceCap
		}
	}
	return clamp01(r / overpriceCap)
}

// commissionScore is monotonically non-increasing in the absolute
// commission: zero at capFrac of the offer price, full score at zero.
func commissionScore(commission, offerPrice, capFrac float64) float64 {
	if offerPrice <= 0 || capFrac <= 0 {
		return 0
	}
	if commission <= 0 {
		return 1
	}
	return clamp01(1 - (commission/offerPrice)/capFrac)
}

// marketingScore rewards breadth: distinct channel count up to fullCount.
func marketingScore(channels []byte, fullCount int) float64 {
	if fullCount <= 0 {
		return 0
	}
	var ids []string
	if len(channels) > 0 {
		_ = json.Unmarshal(channels, &ids)
	}
	distinct := map[string]struct{}{}
	for _, id := range ids {
		distinct[id] = struct{}{}
	}
	n := len(distinct)
	if n >= fullCount {
		return 1
	}
	return float64(n) / float64(fullCount)
}

// bindingScore rewards a short binding period: full score at or below
// floorMonths, zero at or above capMonths, linear in between.
func bindingScore(months, floorMonths, capMonths int) float64 {
	if months <= 0 {
		return 0
	}
	if months <= floorMonths {
		return 1
	}
	if months >= capMonths || capMonths <= floorMonths {
		return 0
	}
	return float64(capMonths-months) / float64(capMonths-floorMonths)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
