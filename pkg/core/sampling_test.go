package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphere_UnitAndAboveSurface(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(1, 0, 0), // parallel to the default reference axis
		NewVec3(-1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 1, 1).Normalize(),
	}
	random := rand.New(rand.NewSource(42))

	for _, normal := range normals {
		for i := 0; i < 500; i++ {
			dir := SampleCosineHemisphere(normal, NewVec2(random.Float64(), random.Float64()))

			if !dir.IsFinite() {
				t.Fatalf("Non-finite direction %v for normal %v", dir, normal)
			}
			if math.Abs(dir.Length()-1.0) > 1e-9 {
				t.Errorf("Expected unit direction, got length %f", dir.Length())
			}
			if dir.Dot(normal) < -1e-12 {
				t.Errorf("Direction %v below surface with normal %v", dir, normal)
			}
		}
	}
}

func TestSampleCosineHemisphere_KnownSamples(t *testing.T) {
	normal := NewVec3(0, 0, 1)

	// u1 = 0 collapses the disk radius: the direction is the normal itself
	dir := SampleCosineHemisphere(normal, NewVec2(0, 0.37))
	if dir.Subtract(normal).Length() > 1e-12 {
		t.Errorf("Expected normal direction, got %v", dir)
	}

	// u1 -> 1 gives a grazing direction in the tangent plane
	dir = SampleCosineHemisphere(normal, NewVec2(1, 0.25))
	if math.Abs(dir.Dot(normal)) > 1e-12 {
		t.Errorf("Expected grazing direction, got %v", dir)
	}
}

func TestSampleCosineHemisphere_CosineDistribution(t *testing.T) {
	// For cosine-weighted sampling E[cos θ] = 2/3
	normal := NewVec3(0, 1, 0)
	random := rand.New(rand.NewSource(7))
	const n = 200000

	sum := 0.0
	for i := 0; i < n; i++ {
		dir := SampleCosineHemisphere(normal, NewVec2(random.Float64(), random.Float64()))
		sum += dir.Dot(normal)
	}

	mean := sum / n
	if math.Abs(mean-2.0/3.0) > 0.01 {
		t.Errorf("Expected mean cosine near 2/3, got %f", mean)
	}
}

func TestOrthonormalBasis(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(1, 0, 0),
		NewVec3(0, 1, 0),
		NewVec3(-0.3, 0.4, 0.866).Normalize(),
	}

	for _, n := range normals {
		tangent, bitangent := OrthonormalBasis(n)
		const tolerance = 1e-9

		if math.Abs(tangent.Length()-1) > tolerance || math.Abs(bitangent.Length()-1) > tolerance {
			t.Errorf("Basis for %v not unit length: %v %v", n, tangent, bitangent)
		}
		if math.Abs(tangent.Dot(n)) > tolerance || math.Abs(bitangent.Dot(n)) > tolerance || math.Abs(tangent.Dot(bitangent)) > tolerance {
			t.Errorf("Basis for %v not orthogonal: %v %v", n, tangent, bitangent)
		}
	}
}

func TestSeededSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)

	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed diverged")
		}
	}

	s := NewSeededSampler(1).Get2D()
	if s.X < 0 || s.X >= 1 || s.Y < 0 || s.Y >= 1 {
		t.Errorf("Sample out of [0,1): %v", s)
	}
}

func TestSamplingConfig_Merge(t *testing.T) {
	base := DefaultSamplingConfig()

	merged := base.Merge(SamplingConfig{SamplesPerPixel: 100})
	if merged.SamplesPerPixel != 100 || merged.MaxDepth != base.MaxDepth {
		t.Errorf("Unexpected merge result %+v", merged)
	}

	unchanged := base.Merge(SamplingConfig{})
	if unchanged != base {
		t.Errorf("Empty override changed config: %+v", unchanged)
	}
}
