package lander

import "math"

// NormalizeAngle wraps an angle into (−π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDiff returns the smallest signed difference a−b, in (−π, π].
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}
