package services

import (
	"math"
	"strconv"

	"brainbrowser/domain/core/valueobjects"
)

// SynapsePath returns the SVG cubic curve joining two neurons in layout
// space. Both control points sit halfway along x, so the curve leaves the
// source horizontally and enters the target horizontally.
func SynapsePath(from, to valueobjects.Position) string {
	mid := from.X() + (to.X()-from.X())*0.5
	return "M " + num(from.X()) + " " + num(from.Y()) +
		" C " + num(mid) + " " + num(from.Y()) +
		", " + num(mid) + " " + num(to.Y()) +
		", " + num(to.X()) + " " + num(to.Y())
}

// Segment is a straight line drawn as a rotated bar: origin, length and
// angle in degrees.
type Segment struct {
	Left     float64
	Top      float64
	Length   float64
	AngleDeg float64
}

// SegmentBetween computes the minimap bar joining two positions
func SegmentBetween(from, to valueobjects.Position) Segment {
	dx := to.X() - from.X()
	dy := to.Y() - from.Y()
	return Segment{
		Left:     from.X(),
		Top:      from.Y(),
		Length:   math.Hypot(dx, dy),
		AngleDeg: math.Atan2(dy, dx) * 180 / math.Pi,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
