package utils

import (
	"math"
	"testing"
)

func TestDot(t *testing.T) {
	if got := Dot([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("Dot = %f, want 32", got)
	}
	if got := Dot([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched Dot = %f, want 0", got)
	}
	if got := Dot(nil, nil); got != 0 {
		t.Errorf("empty Dot = %f, want 0", got)
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); got != 5 {
		t.Errorf("Norm = %f, want 5", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	if n := NormalizeL2(x); n != 5 {
		t.Errorf("returned norm = %f, want 5", n)
	}
	if math.Abs(float64(x[0])-0.6) > 1e-6 || math.Abs(float64(x[1])-0.8) > 1e-6 {
		t.Errorf("got %v", x)
	}
	if n := Norm(x); math.Abs(n-1) > 1e-6 {
		t.Errorf("normalized length = %f", n)
	}

	zero := []float32{0, 0, 0}
	if n := NormalizeL2(zero); n != 0 {
		t.Errorf("zero vector norm = %f", n)
	}
	for _, v := range zero {
		if v != 0 {
			t.Errorf("zero vector should stay zero: %v", zero)
		}
	}
}
