// Package split computes revenue splits in integer cents. Every
// function preserves the exact-sum invariant: the parts always add up
// to the gross amount, with rounding remainders absorbed by the
// seller's share (resale) or the platform's share (print profit).
package split

import (
	"panospace-ledger/pkg/apperror"
)

// Rates in basis points (1/100 of a percent).
const (
	resalePlatformBps = 1000 // 10%
	resaleRoyaltyBps  = 500  // 5%
	printSellerBps    = 6000 // 60% of print profit
)

// Breakdown is the result of splitting a gross amount.
type Breakdown struct {
	SellerNet   int64 `json:"seller_net"`
	PlatformCut int64 `json:"platform_cut"`
	Royalty     int64 `json:"royalty"`
}

// Gross returns the sum of all parts.
func (b Breakdown) Gross() int64 {
	return b.SellerNet + b.PlatformCut + b.Royalty
}

// PrimarySale splits a first sale: the seller keeps everything.
func PrimarySale(gross int64) (Breakdown, error) {
	if gross <= 0 {
		return Breakdown{}, apperror.ErrInvalidAmount()
	}
	return Breakdown{SellerNet: gross}, nil
}

// Resale splits a secondary-market sale: 10% platform fee, 5% royalty
// to the original artist, remainder to the seller.
func Resale(gross int64) (Breakdown, error) {
	if gross <= 0 {
		return Breakdown{}, apperror.ErrInvalidAmount()
	}
	platformCut := roundBps(gross, resalePlatformBps)
	royalty := roundBps(gross, resaleRoyaltyBps)
	return Breakdown{
		SellerNet:   gross - platformCut - royalty,
		PlatformCut: platformCut,
		Royalty:     royalty,
	}, nil
}

// BoostPurchase splits a listing-boost payment: all platform revenue.
func BoostPurchase(gross int64) (Breakdown, error) {
	if gross <= 0 {
		return Breakdown{}, apperror.ErrInvalidAmount()
	}
	return Breakdown{PlatformCut: gross}, nil
}

// PrintProfit splits a physical-print sale. Fulfillment cost comes off
// the top; the seller earns 60% of the remaining profit and the
// platform keeps the rest. A sale at or below cost yields zero for
// both parties.
func PrintProfit(charged, baseCost int64) (Breakdown, error) {
	if charged <= 0 || baseCost < 0 {
		return Breakdown{}, apperror.ErrInvalidAmount()
	}
	profit := charged - baseCost
	if profit < 0 {
		profit = 0
	}
	sellerEarnings := roundBps(profit, printSellerBps)
	return Breakdown{
		SellerNet:   sellerEarnings,
		PlatformCut: profit - sellerEarnings,
	}, nil
}

// baseCosts estimates the fulfillment cost per print size, in cents.
var baseCosts = map[string]int64{
	"5x7":   800,
	"8x10":  1200,
	"11x14": 1800,
	"16x20": 2800,
	"18x24": 3500,
	"24x36": 5500,
}

const defaultBaseCost = 1500

// BaseCostForSize returns the estimated fulfillment cost for a print
// size id, falling back to a conservative default for unknown sizes.
func BaseCostForSize(sizeID string) int64 {
	if cost, ok := baseCosts[sizeID]; ok {
		return cost
	}
	return defaultBaseCost
}

// roundBps applies a basis-point rate with half-up rounding.
func roundBps(amount int64, bps int64) int64 {
	if bps < 0 || bps > 10000 {
		panic("split: rate out of range")
	}
	return (amount*bps + 5000) / 10000
}
