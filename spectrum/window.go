// Package spectrum turns sampled waveforms into the mean-square magnitude
// spectra the analysis engine consumes, and synthesizes the standard test
// waveforms used to exercise data converters.
package spectrum

import (
	"gonum.org/v1/gonum/dsp/window"

	"github.com/linuxmatters/specan/fourier"
)

// ApplyWindow multiplies samples in place by the named window and returns
// the slice.
func ApplyWindow(samples []float64, w fourier.Window) []float64 {
	switch w {
	case fourier.WindowBlackmanHarris:
		return window.BlackmanHarris(samples)
	case fourier.WindowHann:
		return window.Hann(samples)
	default:
		return samples
	}
}

// coherentGain is the mean window coefficient, used to restore amplitudes
// after windowing.
func coherentGain(w fourier.Window, n int) float64 {
	switch w {
	case fourier.WindowBlackmanHarris:
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		window.BlackmanHarris(ones)
		var sum float64
		for _, v := range ones {
			sum += v
		}
		return sum / float64(n)
	case fourier.WindowHann:
		return 0.5
	default:
		return 1
	}
}
