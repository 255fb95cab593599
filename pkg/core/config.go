package core

// SamplingConfig contains the per-render sampling parameters
type SamplingConfig struct {
	SamplesPerPixel int // Number of path samples averaged per pixel
	MaxDepth        int // Maximum number of recursive trace steps
}

// DefaultSamplingConfig returns the reference sampling parameters
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 25,
		MaxDepth:        5,
	}
}

// Merge returns a copy of c with every positive field of override applied
func (c SamplingConfig) Merge(override SamplingConfig) SamplingConfig {
	if override.SamplesPerPixel > 0 {
		c.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		c.MaxDepth = override.MaxDepth
	}
	return c
}
