package valueobjects

// Scale bounds of the primary view.
const (
	MinScale     = 0.5
	MaxScale     = 3.0
	DefaultScale = 1.0
	ZoomStep     = 0.1
)

// ViewTransform is the primary view's pan offset (pixels) and scale factor.
// It owns no graph data.
type ViewTransform struct {
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
	Scale float64 `json:"scale"`
}

// IdentityView is the reset state: no pan, unit scale
func IdentityView() ViewTransform {
	return ViewTransform{Scale: DefaultScale}
}

// Zoom returns the transform with scale moved by delta and clamped to
// [MinScale, MaxScale]
func (v ViewTransform) Zoom(delta float64) ViewTransform {
	v.Scale = clamp(v.Scale+delta, MinScale, MaxScale)
	return v
}

// WithPan returns the transform with a new pan offset
func (v ViewTransform) WithPan(x, y float64) ViewTransform {
	v.PanX, v.PanY = x, y
	return v
}

// Normalize repairs an invalid scale, e.g. from a zero-value transform
func (v ViewTransform) Normalize() ViewTransform {
	if !isValidCoordinate(v.Scale) || v.Scale == 0 {
		v.Scale = DefaultScale
	}
	v.Scale = clamp(v.Scale, MinScale, MaxScale)
	if !isValidCoordinate(v.PanX) {
		v.PanX = 0
	}
	if !isValidCoordinate(v.PanY) {
		v.PanY = 0
	}
	return v
}

// Size is a width/height pair in pixels
type Size struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// IsEmpty reports whether either dimension is zero
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle in pixels
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
