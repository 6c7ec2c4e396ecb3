package symbols

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FallbackPrecision is used when the step size is unusable.
const FallbackPrecision = 8

const displayQuote = "USDT"

// ToExchangeSymbol normalizes a pair to the exchange symbol (no slash, uppercase).
func ToExchangeSymbol(pair string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(pair), "/", ""))
}

// ToDisplaySymbol returns "BASE/USDT" for USDT-quoted symbols and the
// normalized exchange symbol otherwise.
func ToDisplaySymbol(symbol string) string {
	s := ToExchangeSymbol(symbol)
	if strings.HasSuffix(s, displayQuote) {
		return s[:len(s)-len(displayQuote)] + "/" + displayQuote
	}
	return s
}

// Precision returns the number of decimals implied by a step size,
// e.g. 0.001 -> 3. Steps of 1 or more have no decimals.
func Precision(stepSize float64) int {
	if stepSize >= 1 {
		return 0
	}
	if !(stepSize > 0) {
		return FallbackPrecision
	}
	// floor(log10(step)) from the decimal digits avoids log10 rounding on 0.001 and friends
	d := decimal.NewFromFloat(stepSize)
	exp := d.NumDigits() - 1 + int(d.Exponent())
	if exp >= 0 {
		return 0
	}
	return -exp
}

// RoundToStep floors qty to a multiple of stepSize and formats it with the
// precision derived from stepSize. The result never exceeds qty.
//
// When stepSize has more decimals than its precision (0.00025 -> 4), qty is
// floored to the common grid of stepSize and 10^-precision so the printed
// value stays a step multiple.
func RoundToStep(qty, stepSize float64) string {
	if stepSize <= 0 {
		return strconv.FormatFloat(qty, 'f', FallbackPrecision, 64)
	}
	precision := Precision(stepSize)
	if math.IsNaN(qty) || math.IsInf(qty, 0) || math.IsNaN(stepSize) || math.IsInf(stepSize, 0) {
		return strconv.FormatFloat(math.Floor(qty/stepSize)*stepSize, 'f', precision, 64)
	}
	grid := printableStep(decimal.NewFromFloat(stepSize), precision)
	return floorToStep(decimal.NewFromFloat(qty), grid).StringFixed(int32(precision))
}

// ClampAndRoundQty clamps qty into [minQty, maxQty] and rounds it down to the step.
// A minQty that is not a step multiple can still floor below minQty.
func ClampAndRoundQty(qty, minQty, maxQty, stepSize float64) string {
	return RoundToStep(Clamp(qty, minQty, maxQty), stepSize)
}

// Clamp restricts qty to [minQty, maxQty]; minQty wins when the range is inverted.
func Clamp(qty, minQty, maxQty float64) float64 {
	return math.Max(minQty, math.Min(maxQty, qty))
}

// printableStep is the least common multiple of step and 10^-precision.
func printableStep(step decimal.Decimal, precision int) decimal.Decimal {
	scale := precision
	if e := -int(step.Exponent()); e > scale {
		scale = e
	}
	a := step.Shift(int32(scale)).BigInt()
	b := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale-precision)), nil)
	gcd := new(big.Int).GCD(nil, nil, a, b)
	lcm := new(big.Int).Mul(new(big.Int).Quo(a, gcd), b)
	return decimal.NewFromBigInt(lcm, -int32(scale))
}

func floorToStep(qty, step decimal.Decimal) decimal.Decimal {
	q, r := qty.QuoRem(step, 0)
	if r.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.Mul(step)
}
