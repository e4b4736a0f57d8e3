package simulation

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

// retryStreamBit marks the sub-stream used when a run is retried, keeping it
// disjoint from every first-attempt stream of the same request.
const retryStreamBit = uint64(1) << 63

// RandomSource is the single source of randomness for one simulated race.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
	NormFloat64() float64
}

// StreamFactory derives the random source for one run from the request seed.
type StreamFactory func(seed int64, stream uint64) RandomSource

// NewPCGStream returns a PCG generator keyed by (seed, stream). Each run of a
// request gets its own stream index, so the draws of a run do not depend on
// the worker that executes it.
func NewPCGStream(seed int64, stream uint64) RandomSource {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// NewSeed generates a master seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}

func runStream(run int) uint64 {
	return uint64(run)
}

func retryStream(run int) uint64 {
	return uint64(run) | retryStreamBit
}

// gumbel draws from Gumbel(0, scale) by inversion.
func gumbel(rng RandomSource, scale float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return -scale * math.Log(-math.Log(u))
}

func normal(rng RandomSource, mean, stdDev float64) float64 {
	return mean + stdDev*rng.NormFloat64()
}
