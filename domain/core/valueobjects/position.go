package valueobjects

import (
	"math"

	"github.com/goccy/go-json"

	pkgerrors "brainbrowser/pkg/errors"
)

// Layout space is the normalized 0-100 plane shared by the primary view and
// the minimap.
const (
	LayoutMin = 0.0
	LayoutMax = 100.0
)

// Position is a point in layout space
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// MustPosition is NewPosition for literals known to be finite
func MustPosition(x, y float64) Position {
	p, err := NewPosition(x, y)
	if err != nil {
		panic(err)
	}
	return p
}

// X returns the horizontal coordinate, in percent of the brain width
func (p Position) X() float64 {
	return p.x
}

// Y returns the vertical coordinate, in percent of the brain height
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(p.x-other.x, p.y-other.y)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon && math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Clamp bounds both coordinates to [lo, hi]
func (p Position) Clamp(lo, hi float64) Position {
	return Position{x: clamp(p.x, lo, hi), y: clamp(p.y, lo, hi)}
}

// Centroid returns the arithmetic mean of the given positions. The zero
// position is returned for an empty input.
func Centroid(positions ...Position) Position {
	if len(positions) == 0 {
		return Position{}
	}
	var sx, sy float64
	for _, p := range positions {
		sx += p.x
		sy += p.y
	}
	n := float64(len(positions))
	return Position{x: sx / n, y: sy / n}
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{X: p.x, Y: p.y})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewPosition(raw.X, raw.Y)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
