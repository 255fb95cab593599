package core

import (
	"math"
	"testing"
)

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"X cross Y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"Y cross Z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"Z cross X", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"Parallel vectors", NewVec3(2, 0, 0), NewVec3(5, 0, 0), NewVec3(0, 0, 0)},
		{"Anti-commutative", NewVec3(0, 1, 0), NewVec3(1, 0, 0), NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 12)
	n := v.Normalize()

	if math.Abs(n.Length()-1.0) > 1e-12 {
		t.Errorf("Expected unit length, got %f", n.Length())
	}
	if math.Abs(n.X-3.0/13.0) > 1e-12 || math.Abs(n.Y-4.0/13.0) > 1e-12 || math.Abs(n.Z-12.0/13.0) > 1e-12 {
		t.Errorf("Unexpected normalized vector %v", n)
	}

	// Zero vector must not divide by zero
	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Expected zero vector to normalize to zero, got %v", zero)
	}
	if !zero.IsFinite() {
		t.Errorf("Normalizing zero vector produced non-finite result %v", zero)
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	if got := a.Add(b); got != NewVec3(5, -3, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Subtract(b); got != NewVec3(-3, 7, -3) {
		t.Errorf("Subtract: got %v", got)
	}
	if got := a.Multiply(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Multiply: got %v", got)
	}
	if got := a.MultiplyVec(b); got != NewVec3(4, -10, 18) {
		t.Errorf("MultiplyVec: got %v", got)
	}
	if got := a.Dot(b); got != 12 {
		t.Errorf("Dot: got %f", got)
	}
	if got := a.Negate(); got != NewVec3(-1, -2, -3) {
		t.Errorf("Negate: got %v", got)
	}
	if got := a.LengthSquared(); got != 14 {
		t.Errorf("LengthSquared: got %f", got)
	}
}

func TestVec3_Clamp(t *testing.T) {
	got := NewVec3(1.5, -0.2, 0.5).Clamp(0, 1)
	expected := NewVec3(1, 0, 0.5)
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if NewVec3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, 1))
	if got := ray.At(2.5); got != NewVec3(1, 1, 3.5) {
		t.Errorf("Expected (1,1,3.5), got %v", got)
	}
}
