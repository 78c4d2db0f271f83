package prop

import "math"

// 8-point Gauss-Legendre abscissas and weights on [-1, 1].
var (
	gl8X = [4]float64{
		0.1834346424956498,
		0.5255324099163290,
		0.7966664774136267,
		0.9602898564975363,
	}
	gl8W = [4]float64{
		0.3626837833783620,
		0.3137066458778873,
		0.2223810344533745,
		0.1012285362903763,
	}
)

// gaussInt integrates f over [a, b] with fixed-order (8-point)
// Gauss-Legendre quadrature.
func gaussInt(f func(float64) float64, a, b float64) float64 {
	if b <= a {
		return 0
	}
	mid := 0.5 * (a + b)
	half := 0.5 * (b - a)
	sum := 0.0
	for i := 0; i < 4; i++ {
		dx := half * gl8X[i]
		sum += gl8W[i] * (f(mid+dx) + f(mid-dx))
	}
	return sum * half
}

// gaussIntLog integrates f over [a, b] (a, b > 0) by compositing gaussInt
// over segments spaced evenly in log x, for integrands spanning many
// decades.
func gaussIntLog(f func(float64) float64, a, b float64, segments int) float64 {
	if b <= a || a <= 0 {
		return 0
	}
	if segments < 1 {
		segments = 1
	}
	edges := logspace(a, b, segments+1)
	sum := 0.0
	for i := 0; i < segments; i++ {
		sum += gaussInt(f, edges[i], edges[i+1])
	}
	return sum
}

// clampNonNegative zeroes tiny negative round-off results.
func clampNonNegative(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}
