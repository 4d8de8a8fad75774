package clock

import "math"

const (
	// DefaultCameraBound is the half-width of the square the camera may roam.
	DefaultCameraBound = 200.0

	// DefaultEasing is the fraction of the remaining distance covered per frame.
	DefaultEasing = 0.05
)

// Camera eases its x/y position toward a pointer-derived target. Z is fixed.
type Camera struct {
	X, Y, Z float64

	targetX, targetY float64
	bound            float64
	easing           float64
	halfW, halfH     float64
}

func NewCamera(z, bound, easing float64) *Camera {
	if bound <= 0 {
		bound = DefaultCameraBound
	}
	if easing <= 0 || easing > 1 {
		easing = DefaultEasing
	}
	return &Camera{Z: z, bound: bound, easing: easing}
}

// Resize records the viewport so absolute pointer positions can be centred.
func (c *Camera) Resize(width, height int) {
	c.halfW = float64(width) / 2
	c.halfH = float64(height) / 2
}

// Viewport returns the last viewport size.
func (c *Camera) Viewport() (int, int) {
	return int(c.halfW * 2), int(c.halfH * 2)
}

// PointAt sets the target from an absolute pointer position in pixels.
func (c *Camera) PointAt(px, py float64) {
	c.targetX = c.clamp(px - c.halfW)
	c.targetY = c.clamp(py - c.halfH)
}

// Move shifts the target by a relative pointer delta, as delivered while the
// pointer is locked.
func (c *Camera) Move(dx, dy float64) {
	c.targetX = c.clamp(c.targetX + dx)
	c.targetY = c.clamp(c.targetY + dy)
}

// Recenter aims the camera back at the origin.
func (c *Camera) Recenter() {
	c.targetX, c.targetY = 0, 0
}

// Target returns the clamped pointer target in screen orientation.
func (c *Camera) Target() (float64, float64) {
	return c.targetX, c.targetY
}

// Ease moves the camera one step toward the target. Screen y grows downward,
// world y grows upward.
func (c *Camera) Ease() {
	c.X += (c.targetX - c.X) * c.easing
	c.Y += (-c.targetY - c.Y) * c.easing
}

func (c *Camera) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-c.bound, math.Min(c.bound, v))
}
