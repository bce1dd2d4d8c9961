package spectrum

import (
	"math"
	"math/rand"
)

// Cosine synthesizes npts samples of ampl·cos(2π·freq·t + phase) + offset
// at sample rate fs.
func Cosine(npts int, fs, freq, ampl, phase, offset float64) []float64 {
	out := make([]float64, npts)
	w := 2 * math.Pi * freq / fs
	for i := range out {
		out[i] = ampl*math.Cos(w*float64(i)+phase) + offset
	}
	return out
}

// ComplexExp synthesizes npts samples of ampl·exp(j(2π·freq·t + phase))
// at sample rate fs.
func ComplexExp(npts int, fs, freq, ampl, phase float64) []complex128 {
	out := make([]complex128, npts)
	w := 2 * math.Pi * freq / fs
	for i := range out {
		arg := w*float64(i) + phase
		out[i] = complex(ampl*math.Cos(arg), ampl*math.Sin(arg))
	}
	return out
}

// Ramp synthesizes npts samples sweeping linearly from start toward stop
// in steps of (stop-start)/npts; the last sample is one step short of
// stop.
func Ramp(npts int, start, stop float64) []float64 {
	out := make([]float64, npts)
	step := (stop - start) / float64(npts)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// GaussianNoise synthesizes npts samples of white gaussian noise with the
// given standard deviation around mean, from a seeded source so fixtures
// reproduce.
func GaussianNoise(npts int, mean, sd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, npts)
	for i := range out {
		out[i] = mean + sd*rng.NormFloat64()
	}
	return out
}
