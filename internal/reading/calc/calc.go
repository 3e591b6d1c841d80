// Package calc holds the pure consumption arithmetic shared by the
// reading service and its distributions. Everything is decimal; no
// rounding happens here, callers round when they assemble the stored
// row.
package calc

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeConsumption = errors.New("negative_consumption")

var hundred = decimal.NewFromInt(100)

// Method is the closed set of consumption aggregation strategies.
type Method string

const (
	MethodDirect    Method = "direct"
	MethodAreaBased Method = "area_based"
	MethodMixed     Method = "mixed"
)

var ErrUnknownMethod = errors.New("unknown_calculation_method")

// ParseMethod validates a wire-level method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodDirect, MethodAreaBased, MethodMixed:
		return Method(s), nil
	}
	return "", ErrUnknownMethod
}

// Result is a consumption split by origin. Total is always the sum of
// both parts.
type Result struct {
	Direct    decimal.Decimal
	AreaBased decimal.Decimal
}

func (r Result) Total() decimal.Decimal {
	return r.Direct.Add(r.AreaBased)
}

// Delta returns the metered difference. A nil previous means first
// reading on the meter and yields current unchanged.
func Delta(current decimal.Decimal, previous *decimal.Decimal) (decimal.Decimal, error) {
	if previous == nil {
		return current, nil
	}
	d := current.Sub(*previous)
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeConsumption
	}
	return d, nil
}

// Direct scales the metered delta by the calculation coefficient and
// the area weight percentage.
func Direct(delta, calcCoeff, areaPercent decimal.Decimal) Result {
	return Result{
		Direct:    delta.Mul(calcCoeff).Mul(areaPercent).Div(hundred),
		AreaBased: decimal.Zero,
	}
}

// AreaBased derives consumption from an absolute area value scaled by
// the energy coefficient and the area weight percentage.
func AreaBased(areaValue, energyCoeff, areaPercent decimal.Decimal) Result {
	return Result{
		Direct:    decimal.Zero,
		AreaBased: areaValue.Mul(energyCoeff).Mul(areaPercent).Div(hundred),
	}
}

// Mixed combines both strategies; each part keeps its own coefficients.
func Mixed(delta, calcCoeff, areaValue, energyCoeff, areaPercent decimal.Decimal) Result {
	return Result{
		Direct:    delta.Mul(calcCoeff).Mul(areaPercent).Div(hundred),
		AreaBased: areaValue.Mul(energyCoeff).Mul(areaPercent).Div(hundred),
	}
}

// Compute dispatches on the method. Direct ignores area inputs,
// AreaBased ignores the metered delta.
func Compute(m Method, delta, calcCoeff, areaValue, energyCoeff, areaPercent decimal.Decimal) (Result, error) {
	switch m {
	case MethodDirect:
		return Direct(delta, calcCoeff, areaPercent), nil
	case MethodAreaBased:
		return AreaBased(areaValue, energyCoeff, areaPercent), nil
	case MethodMixed:
		return Mixed(delta, calcCoeff, areaValue, energyCoeff, areaPercent), nil
	}
	return Result{}, ErrUnknownMethod
}

// Cost prices a total consumption at the tariff unit price, unrounded.
func Cost(total, unitPrice decimal.Decimal) decimal.Decimal {
	return total.Mul(unitPrice)
}
