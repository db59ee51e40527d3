package openai

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Fatalf("Normalize([3,4])=%v, want [0.6, 0.8]", out)
	}

	var sum float64
	for _, f := range out {
		sum += float64(f) * float64(f)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("normalized magnitude=%f, want 1", math.Sqrt(sum))
	}

	// Zero vectors pass through untouched rather than dividing by zero.
	zero := []float32{0, 0, 0}
	out = Normalize(zero)
	for i, f := range out {
		if f != 0 {
			t.Fatalf("Normalize(zero)[%d]=%f, want 0", i, f)
		}
	}
}
