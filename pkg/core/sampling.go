package core

import (
	"math"
	"math/rand"
)

// Vec2 holds a pair of sample values
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give each unit of parallel work its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler backed by a fresh generator for seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleCosineHemisphere maps a 2D sample to a cosine-weighted unit direction
// in the hemisphere around normal. sample.X drives the radius and sample.Y
// the azimuth.
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	r := math.Sqrt(sample.X)
	theta := 2.0 * math.Pi * sample.Y

	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1.0-sample.X))

	tangent, bitangent := OrthonormalBasis(normal)

	// Transform to world space
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z)).Normalize()
}

// OrthonormalBasis returns a tangent and bitangent completing normal into a
// right-handed frame. The X axis is the reference unless normal is close to
// it, in which case Y is used.
func OrthonormalBasis(normal Vec3) (tangent, bitangent Vec3) {
	reference := NewVec3(1, 0, 0)
	if math.Abs(normal.X) > 0.9 {
		reference = NewVec3(0, 1, 0)
	}

	tangent = normal.Cross(reference).Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}
