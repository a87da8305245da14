package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var microPerSTX = decimal.New(1, 6)

// USDToMicroSTX converts a USD amount at usdPerSTX, flooring to whole
// micro-STX
func USDToMicroSTX(usd, usdPerSTX decimal.Decimal) (int64, error) {
	if !usdPerSTX.IsPositive() {
		return 0, ErrInvalidRate
	}
	if usd.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", usd)
	}
	return usd.Div(usdPerSTX).Mul(microPerSTX).Floor().IntPart(), nil
}

// MicroSTXToUSD converts micro-STX to USD at usdPerSTX
func MicroSTXToUSD(micro int64, usdPerSTX decimal.Decimal) decimal.Decimal {
	return decimal.New(micro, -6).Mul(usdPerSTX)
}

// MicroSTXToSTX renders micro-STX as a decimal STX amount
func MicroSTXToSTX(micro int64) decimal.Decimal {
	return decimal.New(micro, -6)
}
