package spectrum

import (
	"fmt"
	"math"

	"github.com/linuxmatters/specan/fourier"
)

// Quantize converts samples spanning the full-scale range fsr into
// integer codes of the given resolution. Values beyond full scale clip to
// the end codes.
func Quantize(samples []float64, fsr float64, res int, format fourier.CodeFormat) ([]int32, error) {
	if res < 1 || res > 30 {
		return nil, fmt.Errorf("%w: resolution %d outside [1, 30]", ErrInput, res)
	}
	if fsr <= 0 {
		return nil, fmt.Errorf("%w: full-scale range must be positive", ErrInput)
	}
	codes := int32(1) << res
	lsb := fsr / float64(codes)
	minCode, maxCode := -codes/2, codes/2-1
	out := make([]int32, len(samples))
	for i, v := range samples {
		c := int32(math.Floor(v / lsb))
		c = min(max(c, minCode), maxCode)
		if format == fourier.OffsetBinary {
			c += codes / 2
		}
		out[i] = c
	}
	return out, nil
}

// Normalize converts integer codes back to floats in [-1, 1).
func Normalize(codes []int32, res int, format fourier.CodeFormat) ([]float64, error) {
	if res < 1 || res > 30 {
		return nil, fmt.Errorf("%w: resolution %d outside [1, 30]", ErrInput, res)
	}
	half := float64(int32(1) << (res - 1))
	out := make([]float64, len(codes))
	for i, c := range codes {
		v := float64(c)
		if format == fourier.OffsetBinary {
			v -= half
		}
		out[i] = v / half
	}
	return out, nil
}
