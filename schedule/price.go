package schedule

import "fmt"

// priceShift is the fractional bit width of the Q32.32 price representation.
const priceShift = 32

// maxPriceNumerator bounds the numerator so the shifted value fits in 64 bits.
const maxPriceNumerator = 1<<(64-priceShift) - 1

// PriceToFixedPoint converts a human price ratio into the auction's Q32.32
// fixed-point representation: numerator<<32 / denominator, truncated.
func PriceToFixedPoint(numerator, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrZeroDenominator
	}
	if numerator > maxPriceNumerator {
		return 0, fmt.Errorf("%w: numerator %d > %d", ErrPriceOverflow, numerator, uint64(maxPriceNumerator))
	}
	return (numerator << priceShift) / denominator, nil
}
