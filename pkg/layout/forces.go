package layout

import "math"

// force is one independent contribution to per-tick motion. Forces run in a
// fixed order and accumulate displacements into the simulation's shared
// buffers; the engine integrates once after all forces have applied.
type force interface {
	apply(s *simulation, alpha float64)
}

// linkForce pulls each edge's endpoints toward the configured target
// separation, with restoring strength increasing with edge weight. It is an
// iterative relaxation, not a closed-form solve: one pass per tick composes
// cheaply with the other forces and converges over the cooling schedule.
type linkForce struct{}

func (linkForce) apply(s *simulation, alpha float64) {
	for _, l := range s.links {
		src, dst := &s.bodies[l.source], &s.bodies[l.target]
		dx := dst.x + dst.vx - src.x - src.vx
		dy := dst.y + dst.vy - src.y - src.vy
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			// Coincident endpoints get a tiny deterministic separation
			// so the spring has a direction to act along.
			dx, dy, dist = 1e-6, 1e-6, math.Sqrt2*1e-6
		}
		// Positive when too far apart, negative when too close.
		stretch := (dist - s.cfg.LinkDistance) / dist
		k := s.cfg.LinkStiffness * l.weight * alpha
		fx, fy := dx*stretch*k, dy*stretch*k
		s.dx[l.target] -= fx / 2
		s.dy[l.target] -= fy / 2
		s.dx[l.source] += fx / 2
		s.dy[l.source] += fy / 2
	}
}

// chargeForce is many-body repulsion between every node pair, approximated
// with a Barnes-Hut quadtree so the per-tick cost is O(n log n) instead of
// O(n²). Negative strength repels.
type chargeForce struct{}

func (chargeForce) apply(s *simulation, alpha float64) {
	if len(s.bodies) < 2 {
		return
	}
	qt := buildQuadtree(s.bodies)
	minDist2 := s.cfg.ChargeMinDistance * s.cfg.ChargeMinDistance
	for i := range s.bodies {
		b := &s.bodies[i]
		fx, fy := qt.accumulate(b.x, b.y, s.cfg.Theta, minDist2)
		s.dx[i] += fx * s.cfg.Charge * alpha
		s.dy[i] += fy * s.cfg.Charge * alpha
	}
}

// centerForce nudges the node-set centroid toward the canvas center,
// preventing the whole layout from drifting off screen. It applies the same
// correction to every node, so relative geometry is untouched.
type centerForce struct{}

func (centerForce) apply(s *simulation, alpha float64) {
	n := len(s.bodies)
	if n == 0 {
		return
	}
	var cx, cy float64
	for i := range s.bodies {
		cx += s.bodies[i].x
		cy += s.bodies[i].y
	}
	cx /= float64(n)
	cy /= float64(n)
	shiftX := (s.cfg.Width/2 - cx) * s.cfg.CenterStrength * alpha
	shiftY := (s.cfg.Height/2 - cy) * s.cfg.CenterStrength * alpha
	for i := range s.bodies {
		s.dx[i] += shiftX
		s.dy[i] += shiftY
	}
}

// collideForce enforces a minimum center-to-center separation per node pair,
// derived from the kind radii plus the shared margin. Overlaps are resolved
// iteratively across ticks rather than instantaneously, which keeps the
// motion smooth while the charge force is still pushing nodes around.
type collideForce struct{}

func (collideForce) apply(s *simulation, alpha float64) {
	for iter := 0; iter < s.cfg.CollideIterations; iter++ {
		for i := range s.bodies {
			for j := i + 1; j < len(s.bodies); j++ {
				a, b := &s.bodies[i], &s.bodies[j]
				dx := b.x - a.x
				dy := b.y - a.y
				dist := math.Hypot(dx, dy)
				minDist := a.radius + b.radius
				if dist >= minDist {
					continue
				}
				if dist == 0 {
					dx, dy, dist = 1e-6, 0, 1e-6
				}
				// Push each body half the overlap apart, weighted by alpha
				// so late-stage corrections stay gentle.
				overlap := (minDist - dist) / dist * 0.5 * alpha
				s.dx[i] -= dx * overlap
				s.dy[i] -= dy * overlap
				s.dx[j] += dx * overlap
				s.dy[j] += dy * overlap
			}
		}
	}
}
