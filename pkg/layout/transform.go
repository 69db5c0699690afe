package layout

// Transform is the render-time pan/zoom mapping from simulation coordinates
// to screen coordinates: screen = sim*Scale + Translate. It lives entirely
// outside the physics - changing it never moves a node.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// identityTransform is the no-pan, no-zoom mapping.
func identityTransform() Transform {
	return Transform{Scale: 1}
}

// Apply maps a simulation-space point to screen space.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// Invert maps a screen-space point (a pointer event, typically) back to
// simulation space, so drags can pin nodes at the right coordinates.
// A zero-scale transform cannot occur: the engine clamps scale to a
// positive range.
func (t Transform) Invert(p Point) Point {
	return Point{
		X: (p.X - t.TranslateX) / t.Scale,
		Y: (p.Y - t.TranslateY) / t.Scale,
	}
}
