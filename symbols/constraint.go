package symbols

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidStepSize = errors.New("invalid step size")
	ErrInvalidRange    = errors.New("min quantity above max quantity")
	ErrBelowMinQty     = errors.New("rounded quantity below min quantity")
)

// StepSizeConstraint is the LOT_SIZE tuple reported by the exchange for a symbol.
type StepSizeConstraint struct {
	MinQty   float64
	MaxQty   float64
	StepSize float64
}

func (c StepSizeConstraint) Validate() error {
	if !isFinite(c.StepSize) || c.StepSize <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidStepSize, c.StepSize)
	}
	if !isFinite(c.MinQty) || !isFinite(c.MaxQty) || c.MinQty < 0 {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRange, c.MinQty, c.MaxQty)
	}
	if c.MinQty > c.MaxQty {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRange, c.MinQty, c.MaxQty)
	}
	return nil
}

// Apply is ClampAndRoundQty with the constraint's bounds.
func (c StepSizeConstraint) Apply(qty float64) string {
	return ClampAndRoundQty(qty, c.MinQty, c.MaxQty, c.StepSize)
}

// NormalizeQty is the strict form of ClampAndRoundQty. It rejects input the
// lenient form would silently format and reports when flooring lands under MinQty;
// the rounded value is still returned alongside ErrBelowMinQty.
func NormalizeQty(qty float64, c StepSizeConstraint) (string, error) {
	if !isFinite(qty) || qty < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuantity, qty)
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	out := c.Apply(qty)
	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidQuantity, out)
	}
	if v < c.MinQty {
		return out, fmt.Errorf("%w: %s < %v", ErrBelowMinQty, out, c.MinQty)
	}
	return out, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
