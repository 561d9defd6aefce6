package domain

// BoostLevel identifies a paid visibility tier for a listing.
type BoostLevel int

const (
	BoostLevelBasic    BoostLevel = 1
	BoostLevelFeatured BoostLevel = 2
	BoostLevelPremium  BoostLevel = 3
)

// BoostPrices maps each boost level to its price in cents.
var BoostPrices = map[BoostLevel]int64{
	BoostLevelBasic:    99,
	BoostLevelFeatured: 299,
	BoostLevelPremium:  499,
}

// PriceForBoost returns the price of a boost level, or false for an
// unknown level.
func PriceForBoost(level BoostLevel) (int64, bool) {
	price, ok := BoostPrices[level]
	return price, ok
}
