// Package physics provides hit testing and distance utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle reports whether a point lies strictly inside the circle.
// A point exactly on the boundary is a miss.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) < radius*radius
}

// WithinRadius reports whether a point lies inside or on the circle.
// Area effects use the inclusive form so the rim is still affected.
func WithinRadius(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// Falloff returns the linear attenuation 1 - d/r for a distance d inside radius r.
// The result is clamped to [0, 1]; a non-positive radius yields 0.
func Falloff(d, r float64) float64 {
	if r <= 0 {
		return 0
	}
	f := 1 - d/r
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Rotate rotates (x, y) around the origin by angle radians.
func Rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// Normalize returns the unit vector of (x, y) and its original length.
// A zero vector is returned unchanged with length 0.
func Normalize(x, y float64) (nx, ny, length float64) {
	length = math.Hypot(x, y)
	if length == 0 {
		return 0, 0, 0
	}
	return x / length, y / length, length
}
