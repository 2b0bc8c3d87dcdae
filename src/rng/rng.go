// Package rng provides the seeded random streams and sampling distributions used by the fauxseq generators.
package rng

import (
	"hash/fnv"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NewStream returns a deterministic generator for a named stage of a run.
// The same seed and stage always give the same sequence of draws.
func NewStream(seed int64, stage string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(stage))
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}

// LogNormal draws from a log-normal distribution with the given log-scale mean and sigma
func LogNormal(r *rand.Rand, mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}

// Normal draws from a normal distribution
func Normal(r *rand.Rand, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}

// Poisson draws a Poisson count, lambda <= 0 always gives 0
func Poisson(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: r}.Rand())
}

// Exponential draws from an exponential distribution parameterised by its scale (mean)
func Exponential(r *rand.Rand, scale float64) float64 {
	return distuv.Exponential{Rate: 1 / scale, Src: r}.Rand()
}

// Uniform draws from [min, max)
func Uniform(r *rand.Rand, min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: r}.Rand()
}
