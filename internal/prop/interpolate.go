package prop

import (
	"math"
	"sort"
)

// interpolate linearly interpolates y(x) on the strictly increasing grid xs.
// Outside the grid it returns 0: tabulated quantities are treated as absent
// beyond their domain unless the caller asks for clamping.
func interpolate(x float64, xs, ys []float64) float64 {
	if len(xs) == 0 || x < xs[0] || x > xs[len(xs)-1] {
		return 0
	}
	return interpolateClamped(x, xs, ys)
}

// interpolateClamped interpolates like interpolate but clamps to the edge
// values outside the grid.
func interpolateClamped(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, x)
	// xs[i-1] < x <= xs[i]
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}

// strictlyIncreasing reports whether xs is a valid interpolation grid.
func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

// logspace returns n points spaced evenly in log between a and b inclusive.
func logspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	la, lb := math.Log(a), math.Log(b)
	for i := range out {
		out[i] = math.Exp(la + (lb-la)*float64(i)/float64(n-1))
	}
	return out
}
