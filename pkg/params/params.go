package params

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned by the Store setters when a value would
// produce a degenerate or unbounded canopy.
var ErrInvalidParameter = errors.New("invalid parameter")

// Parameter names as accepted by Store.Set.
const (
	Height       = "height"
	HeightFactor = "height-factor"
	Amount       = "amount"
	Thickness    = "thickness"
	Angle        = "angle"
)

// Names lists every tunable parameter.
var Names = []string{Height, HeightFactor, Amount, Thickness, Angle}

// DefaultMaxAmount bounds the branch budget. Each extra level doubles the
// number of segments drawn.
const DefaultMaxAmount = 20

// DefaultMaxSurface bounds each side of the drawing surface, in pixels.
const DefaultMaxSurface = 8192

// RenderParameters are the five values that fully determine a canopy.
type RenderParameters struct {
	// Height is the length of the trunk.
	Height float64 `json:"height"`

	// HeightFactor divides the branch length at every level.
	HeightFactor float64 `json:"heightFactor"`

	// Amount is the number of branching levels.
	Amount int `json:"amount"`

	// Thickness scales the stroke width of every segment.
	Thickness float64 `json:"thickness"`

	// Angle is the deviation of each branch from its parent, in radians.
	Angle float64 `json:"angle"`
}

// Defaults returns the parameters the canopy starts with.
func Defaults() RenderParameters {
	return RenderParameters{
		Height:       200,
		HeightFactor: 1.25,
		Amount:       10,
		Thickness:    10,
		Angle:        Radians(15),
	}
}

func Radians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

func Degrees(radians float64) float64 {
	return radians * (180 / math.Pi)
}

// Validate checks every field. maxAmount of zero or less disables the upper
// bound on Amount.
func (p RenderParameters) Validate(maxAmount int) error {
	return errors.Join(
		checkPositive(Height, p.Height),
		checkPositive(HeightFactor, p.HeightFactor),
		checkAmount(p.Amount, maxAmount),
		checkPositive(Thickness, p.Thickness),
		checkFinite(Angle, p.Angle),
	)
}

func checkPositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func checkAmount(amount, maxAmount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidParameter, Amount, amount)
	}
	if maxAmount > 0 && amount > maxAmount {
		return fmt.Errorf("%w: %s must be at most %d, got %d", ErrInvalidParameter, Amount, maxAmount, amount)
	}
	return nil
}
