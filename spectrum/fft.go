package spectrum

import (
	"errors"
	"fmt"
	"slices"

	"github.com/argusdusty/gofft"
	"gonum.org/v1/gonum/dsp/fourier"

	specfourier "github.com/linuxmatters/specan/fourier"
)

// ErrInput reports waveform input the transforms cannot process.
var ErrInput = errors.New("spectrum input error")

// RealMS computes the mean-square magnitude spectrum of a real waveform:
// NFFT/2+1 bins scaled so a full-scale (amplitude 1) sinusoid measures
// 0 dBFS. The window is applied to a copy of the samples; the coherent
// gain of the window is divided back out.
func RealMS(samples []float64, w specfourier.Window) ([]float64, error) {
	n := len(samples)
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: need an even number of samples, got %d", ErrInput, n)
	}
	windowed := ApplyWindow(slices.Clone(samples), w)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)
	gain := coherentGain(w, n)
	scale := 2 / (float64(n) * gain)
	msq := make([]float64, len(coeffs))
	for i, z := range coeffs {
		s := scale
		if i == 0 || i == len(coeffs)-1 {
			// DC and Nyquist appear once in the real spectrum.
			s = scale / 2
		}
		re := real(z) * s
		im := imag(z) * s
		msq[i] = re*re + im*im
	}
	return msq, nil
}

// ComplexBins computes the complex bin values of a complex waveform:
// NFFT bins over [0, fs), scaled so a full-scale complex exponential
// measures 0 dBFS. The FFT length must be a power of two.
func ComplexBins(samples []complex128, w specfourier.Window) ([]complex128, error) {
	n := len(samples)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: FFT length %d is not a power of two", ErrInput, n)
	}
	buf := slices.Clone(samples)
	if w != specfourier.WindowNone {
		win := make([]float64, n)
		for i := range win {
			win[i] = 1
		}
		ApplyWindow(win, w)
		for i := range buf {
			buf[i] *= complex(win[i], 0)
		}
	}
	if err := gofft.FFT(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	scale := complex(1/(float64(n)*coherentGain(w, n)), 0)
	for i := range buf {
		buf[i] *= scale
	}
	return buf, nil
}

// ComplexMS computes the mean-square magnitude spectrum of a complex
// waveform.
func ComplexMS(samples []complex128, w specfourier.Window) ([]float64, error) {
	bins, err := ComplexBins(samples, w)
	if err != nil {
		return nil, err
	}
	msq := make([]float64, len(bins))
	for i, z := range bins {
		msq[i] = real(z)*real(z) + imag(z)*imag(z)
	}
	return msq, nil
}
