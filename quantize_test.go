package las

import (
	"errors"
	"math"
	"testing"
)

func TestTransform_RoundTrip(t *testing.T) {
	tr := Transform{Scale: 0.01, Offset: 1000}

	// Quantization may not reproduce an arbitrary input exactly, but it must
	// land within half a scale unit, and the raw value must be stable.
	cases := []float64{1000, 1000.01, 999.99, 1234.56, -50.25, 0}
	for _, x := range cases {
		raw := tr.Raw(x)
		back := tr.Real(raw)
		if diff := math.Abs(back - x); diff > tr.Scale/2 {
			t.Errorf("Real(Raw(%g)) = %g, off by %g", x, back, diff)
		}
		if again := tr.Raw(back); again != raw {
			t.Errorf("Raw(Real(%d)) = %d, quantization is unstable", raw, again)
		}
	}
}

func TestTransform_Raw_RoundsHalfAwayFromZero(t *testing.T) {
	tr := Transform{Scale: 0.1}

	cases := []struct {
		x    float64
		want int32
	}{
		{8.25, 83},
		{-8.25, -83},
		{0.05, 1},
		{-0.05, -1},
	}
	for _, c := range cases {
		if got := tr.Raw(c.x); got != c.want {
			t.Errorf("Raw(%g) = %d, expected %d", c.x, got, c.want)
		}
	}
}

func TestTransform_Validate(t *testing.T) {
	if err := (Transform{Scale: 0.001}).Validate(); err != nil {
		t.Errorf("positive scale failed: %v", err)
	}
	for _, scale := range []float64{0, -0.01} {
		err := Transform{Scale: scale}.Validate()
		if !errors.Is(err, ErrInvalidScale) {
			t.Errorf("scale %g: expected ErrInvalidScale, got %v", scale, err)
		}
	}
}

func TestTransforms_Validate(t *testing.T) {
	transforms := DefaultTransforms()
	if err := transforms.Validate(); err != nil {
		t.Fatalf("default transforms failed: %v", err)
	}
	transforms.Z.Scale = 0
	if !errors.Is(transforms.Validate(), ErrInvalidScale) {
		t.Error("expected ErrInvalidScale for zero z scale")
	}
}

func TestBounds_Grow(t *testing.T) {
	b := emptyBounds()
	if !b.IsEmpty() {
		t.Fatal("fresh bounds should be empty")
	}

	b.Grow(Vector{1, 2, 3})
	b.Grow(Vector{-4, 5, 0})

	if b.IsEmpty() {
		t.Fatal("grown bounds should not be empty")
	}
	want := Bounds{Min: Vector{-4, 2, 0}, Max: Vector{1, 5, 3}}
	if b != want {
		t.Errorf("bounds = %+v, expected %+v", b, want)
	}
}
