package prop

import (
	"math"
	"testing"
)

func TestGaussIntPolynomialExact(t *testing.T) {
	// 8-point Gauss-Legendre is exact for polynomials up to degree 15
	f := func(x float64) float64 { return x*x*x + 2*x - 1 }
	got := gaussInt(f, 0, 2)
	want := 4.0 + 4.0 - 2.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("gaussInt = %g, want %g", got, want)
	}
}

func TestGaussIntEmptyInterval(t *testing.T) {
	f := func(x float64) float64 { return 1 }
	if got := gaussInt(f, 2, 2); got != 0 {
		t.Errorf("empty interval should integrate to 0, got %g", got)
	}
	if got := gaussInt(f, 3, 2); got != 0 {
		t.Errorf("inverted interval should integrate to 0, got %g", got)
	}
}

func TestGaussIntLog(t *testing.T) {
	// int 1/x dx over [1, e^10] = 10; a single panel would miss this badly
	f := func(x float64) float64 { return 1 / x }
	got := gaussIntLog(f, 1, math.Exp(10), 32)
	if math.Abs(got-10) > 1e-8 {
		t.Errorf("gaussIntLog(1/x) = %g, want 10", got)
	}
}

func TestGaussIntLogInvalidDomain(t *testing.T) {
	f := func(x float64) float64 { return 1 }
	if got := gaussIntLog(f, 0, 10, 8); got != 0 {
		t.Errorf("non-positive lower bound should integrate to 0, got %g", got)
	}
	if got := gaussIntLog(f, 10, 1, 8); got != 0 {
		t.Errorf("inverted interval should integrate to 0, got %g", got)
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := clampNonNegative(-1e-30); got != 0 {
		t.Errorf("negative round-off should clamp to 0, got %g", got)
	}
	if got := clampNonNegative(math.NaN()); got != 0 {
		t.Errorf("NaN should clamp to 0, got %g", got)
	}
	if got := clampNonNegative(3.5); got != 3.5 {
		t.Errorf("positive value should pass through, got %g", got)
	}
}
