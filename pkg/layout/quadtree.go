package layout

import "math"

// maxQuadDepth caps subdivision so coincident points cannot recurse forever.
const maxQuadDepth = 24

// quadtree is a Barnes-Hut aggregation tree over body positions. Each cell
// stores the mass (body count) and center of mass of everything beneath it,
// letting the charge force treat distant clusters as single points.
type quadtree struct {
	root           *quadCell
	x0, y0, x1, y1 float64
}

type quadCell struct {
	children [4]*quadCell
	leaf     bool
	px, py   float64 // leaf body position
	mass     float64
	cx, cy   float64 // center of mass
}

// buildQuadtree constructs the tree for the current body positions.
// Call once per tick; positions change every integration step.
func buildQuadtree(bodies []body) *quadtree {
	qt := &quadtree{
		x0: math.Inf(1), y0: math.Inf(1),
		x1: math.Inf(-1), y1: math.Inf(-1),
	}
	for i := range bodies {
		qt.x0 = math.Min(qt.x0, bodies[i].x)
		qt.y0 = math.Min(qt.y0, bodies[i].y)
		qt.x1 = math.Max(qt.x1, bodies[i].x)
		qt.y1 = math.Max(qt.y1, bodies[i].y)
	}
	// Square bounds keep cell aspect ratios stable under subdivision.
	side := math.Max(qt.x1-qt.x0, qt.y1-qt.y0)
	if side == 0 {
		side = 1
	}
	qt.x1 = qt.x0 + side
	qt.y1 = qt.y0 + side

	for i := range bodies {
		qt.root = insert(qt.root, bodies[i].x, bodies[i].y, qt.x0, qt.y0, qt.x1, qt.y1, 0)
	}
	aggregate(qt.root)
	return qt
}

// insert places a unit-mass point into the cell, subdividing leaves on
// collision. Coincident points merge into one leaf with accumulated mass
// once the depth cap is reached.
func insert(c *quadCell, x, y, x0, y0, x1, y1 float64, depth int) *quadCell {
	if c == nil {
		return &quadCell{leaf: true, px: x, py: y, mass: 1}
	}
	if c.leaf {
		if depth >= maxQuadDepth || (c.px == x && c.py == y) {
			c.mass++
			return c
		}
		// Split: push the existing body down, then re-insert the new one.
		old := *c
		*c = quadCell{}
		cq, cx0, cy0, cx1, cy1 := childFor(old.px, old.py, x0, y0, x1, y1)
		c.children[cq] = insert(nil, old.px, old.py, cx0, cy0, cx1, cy1, depth+1)
		c.children[cq].mass = old.mass
	}
	q, cx0, cy0, cx1, cy1 := childFor(x, y, x0, y0, x1, y1)
	c.children[q] = insert(c.children[q], x, y, cx0, cy0, cx1, cy1, depth+1)
	return c
}

// childFor picks the quadrant for a point and returns that child's bounds.
func childFor(x, y, x0, y0, x1, y1 float64) (int, float64, float64, float64, float64) {
	mx, my := (x0+x1)/2, (y0+y1)/2
	q := 0
	nx0, ny0, nx1, ny1 := x0, y0, mx, my
	if x >= mx {
		q |= 1
		nx0, nx1 = mx, x1
	}
	if y >= my {
		q |= 2
		ny0, ny1 = my, y1
	}
	return q, nx0, ny0, nx1, ny1
}

// aggregate fills in mass and center of mass bottom-up.
func aggregate(c *quadCell) {
	if c == nil {
		return
	}
	if c.leaf {
		c.cx, c.cy = c.px, c.py
		return
	}
	var mass, cx, cy float64
	for _, child := range c.children {
		if child == nil {
			continue
		}
		aggregate(child)
		mass += child.mass
		cx += child.cx * child.mass
		cy += child.cy * child.mass
	}
	c.mass = mass
	if mass > 0 {
		c.cx, c.cy = cx/mass, cy/mass
	}
}

// accumulate returns the summed inverse-square contribution of all bodies
// toward the query point: Σ mass·(c - p)/|c - p|². The caller multiplies by
// the (negative) charge strength to turn attraction into repulsion. Cells
// whose size-to-distance ratio is below theta are used as aggregates without
// descending further.
func (qt *quadtree) accumulate(x, y, theta, minDist2 float64) (float64, float64) {
	var fx, fy float64
	size := qt.x1 - qt.x0

	var walk func(c *quadCell, size float64)
	walk = func(c *quadCell, size float64) {
		if c == nil || c.mass == 0 {
			return
		}
		dx := c.cx - x
		dy := c.cy - y
		d2 := dx*dx + dy*dy

		// Far enough away (or a leaf): treat as a point mass.
		if c.leaf || size*size < theta*theta*d2 {
			if d2 == 0 {
				return // the query body itself
			}
			if d2 < minDist2 {
				d2 = minDist2
			}
			fx += c.mass * dx / d2
			fy += c.mass * dy / d2
			return
		}
		for _, child := range c.children {
			walk(child, size/2)
		}
	}
	walk(qt.root, size)
	return fx, fy
}
