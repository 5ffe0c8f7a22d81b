package preprocess

import (
	"math"
	"sort"
)

// Point is an XY position on the bed.
type Point [2]float64

// Hull accumulates the extrusion points of one object.
type Hull interface {
	Add(p Point)
	Empty() bool
	Center() Point
	Polygon() []Point
}

// NewHull returns a ConvexHull when precise is set and a BoxHull otherwise.
func NewHull(precise bool) Hull {
	if precise {
		return &ConvexHull{}
	}
	return &BoxHull{}
}

// BoxHull tracks the axis aligned bounding box.
type BoxHull struct {
	min, max Point
	n        int
}

func (h *BoxHull) Add(p Point) {
	if h.n == 0 {
		h.min, h.max = p, p
	} else {
		h.min[0] = math.Min(h.min[0], p[0])
		h.min[1] = math.Min(h.min[1], p[1])
		h.max[0] = math.Max(h.max[0], p[0])
		h.max[1] = math.Max(h.max[1], p[1])
	}
	h.n++
}

func (h *BoxHull) Empty() bool {
	return h.n == 0
}

func (h *BoxHull) Center() Point {
	return Point{(h.min[0] + h.max[0]) / 2, (h.min[1] + h.max[1]) / 2}
}

func (h *BoxHull) Polygon() []Point {
	if h.n == 0 {
		return nil
	}
	return []Point{
		{h.min[0], h.min[1]},
		{h.max[0], h.min[1]},
		{h.max[0], h.max[1]},
		{h.min[0], h.max[1]},
	}
}

// compact the point set down to its hull once it grows past this size
const hullCompactAt = 4096

// ConvexHull tracks the convex hull of every point added.
type ConvexHull struct {
	points []Point
}

func (h *ConvexHull) Add(p Point) {
	h.points = append(h.points, p)
	if len(h.points) >= hullCompactAt {
		h.points = convexHull(h.points)
	}
}

func (h *ConvexHull) Empty() bool {
	return len(h.points) == 0
}

// Polygon returns the hull vertices counter-clockwise, starting at the
// lowest-left point.
func (h *ConvexHull) Polygon() []Point {
	h.points = convexHull(h.points)
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

// Center is the area centroid of the hull, falling back to the vertex mean
// when the hull is degenerate.
func (h *ConvexHull) Center() Point {
	poly := h.Polygon()
	if len(poly) == 0 {
		return Point{}
	}

	var a, cx, cy float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		c := p[0]*q[1] - q[0]*p[1]
		a += c
		cx += (p[0] + q[0]) * c
		cy += (p[1] + q[1]) * c
	}
	if math.Abs(a) < 1e-9 {
		var sx, sy float64
		for _, p := range poly {
			sx += p[0]
			sy += p[1]
		}
		n := float64(len(poly))
		return Point{sx / n, sy / n}
	}
	a *= 3
	return Point{cx / a, cy / a}
}

func cross(o, a, b Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// convexHull is Andrew's monotone chain. pts is reordered in place.
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return dedupe(pts)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	pts = dedupe(pts)
	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func dedupe(pts []Point) []Point {
	out := pts[:0]
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
