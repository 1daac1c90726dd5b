/*
This file contains helpers for moving between integer base-unit amounts, as
reserve snapshots record them, and the float64 display units the simulation
core works in.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

func precisionFactor(precision int) (sdkmath.LegacyDec, error) {
	if precision < 0 || precision > 18 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	return sdkmath.LegacyNewDec(10).Power(uint64(precision)), nil
}

// BaseUnitsToFloat64 converts an integer base-unit amount to display units
// by dividing out 10^precision.
func BaseUnitsToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	factor, err := precisionFactor(precision)
	if err != nil {
		return 0, err
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	result, err := sdkmath.LegacyNewDecFromInt(amount).Quo(factor).Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}

// Float64ToBaseUnits converts a display-unit amount to integer base units,
// truncating below 10^-precision. The decimal round-trips through a string
// to avoid binary float artifacts.
func Float64ToBaseUnits(amount float64, precision int) (sdkmath.Int, error) {
	factor, err := precisionFactor(precision)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if amount == 0 {
		return sdkmath.ZeroInt(), nil
	}

	dec, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.*f", precision, amount))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	return dec.Mul(factor).TruncateInt(), nil
}
