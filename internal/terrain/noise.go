package terrain

import (
	"github.com/ojrac/opensimplex-go"
)

// hash2 is a SplitMix64 style integer hash, stable across runs for the same inputs.
func hash2(x, z, seed int64) uint64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// octaveNoise sums octaves of simplex noise, one source per octave.
type octaveNoise struct {
	octaves     []opensimplex.Noise
	persistence float64
	lacunarity  float64
}

func newOctaveNoise(seed int64, octaves int, persistence, lacunarity float64) *octaveNoise {
	n := &octaveNoise{
		octaves:     make([]opensimplex.Noise, octaves),
		persistence: persistence,
		lacunarity:  lacunarity,
	}
	for i := range n.octaves {
		n.octaves[i] = opensimplex.NewNormalized(seed + int64(i*131))
	}
	return n
}

// Eval2 returns a value in [0,1].
func (n *octaveNoise) Eval2(x, z float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for _, o := range n.octaves {
		sum += o.Eval2(x*frequency, z*frequency) * amplitude
		norm += amplitude
		amplitude *= n.persistence
		frequency *= n.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
