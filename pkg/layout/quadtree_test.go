package layout

import (
	"math"
	"math/rand/v2"
	"testing"
)

// bruteForce computes the exact inverse-square sum the quadtree approximates.
func bruteForce(bodies []body, x, y, minDist2 float64) (float64, float64) {
	var fx, fy float64
	for i := range bodies {
		dx := bodies[i].x - x
		dy := bodies[i].y - y
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		if d2 < minDist2 {
			d2 = minDist2
		}
		fx += dx / d2
		fy += dy / d2
	}
	return fx, fy
}

func randomBodies(n int, rng *rand.Rand) []body {
	bodies := make([]body, n)
	for i := range bodies {
		bodies[i] = body{x: rng.Float64() * 1000, y: rng.Float64() * 1000}
	}
	return bodies
}

func TestQuadtreeExactWhenThetaZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	bodies := randomBodies(60, rng)
	qt := buildQuadtree(bodies)

	for i := range bodies {
		wantX, wantY := bruteForce(bodies, bodies[i].x, bodies[i].y, 1)
		gotX, gotY := qt.accumulate(bodies[i].x, bodies[i].y, 0, 1)
		if math.Abs(gotX-wantX) > 1e-9 || math.Abs(gotY-wantY) > 1e-9 {
			t.Fatalf("body %d: theta=0 accumulate = (%v, %v), want exact (%v, %v)", i, gotX, gotY, wantX, wantY)
		}
	}
}

func TestQuadtreeApproximationError(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	bodies := randomBodies(200, rng)
	qt := buildQuadtree(bodies)

	// With the default theta the approximation should stay within a few
	// percent of the exact field for points inside the cloud.
	var worst float64
	for i := 0; i < 50; i++ {
		b := bodies[i]
		wantX, wantY := bruteForce(bodies, b.x, b.y, 1)
		gotX, gotY := qt.accumulate(b.x, b.y, 0.9, 1)
		want := math.Hypot(wantX, wantY)
		if want == 0 {
			continue
		}
		err := math.Hypot(gotX-wantX, gotY-wantY) / want
		worst = math.Max(worst, err)
	}
	if worst > 0.15 {
		t.Errorf("worst relative error %v, want <= 0.15", worst)
	}
}

func TestQuadtreeCoincidentPoints(t *testing.T) {
	bodies := []body{
		{x: 10, y: 10},
		{x: 10, y: 10},
		{x: 10, y: 10},
		{x: 500, y: 500},
	}
	qt := buildQuadtree(bodies)

	// Merged coincident leaf: the probe at a distance feels mass 3.
	fx, fy := qt.accumulate(500, 500, 0, 1)
	dx, dy := 10.0-500, 10.0-500
	d2 := dx*dx + dy*dy
	if math.Abs(fx-3*dx/d2) > 1e-9 || math.Abs(fy-3*dy/d2) > 1e-9 {
		t.Errorf("accumulate = (%v, %v), want mass-3 contribution", fx, fy)
	}
}

func TestQuadtreeSingleBody(t *testing.T) {
	qt := buildQuadtree([]body{{x: 5, y: 5}})
	fx, fy := qt.accumulate(5, 5, 0.9, 1)
	if fx != 0 || fy != 0 {
		t.Errorf("a body must not repel itself: (%v, %v)", fx, fy)
	}
}
