package fourier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlias(t *testing.T) {
	// Complex: reduce into [0, fs).
	assert.Equal(t, 100.0, alias(100, 1024, false))
	assert.Equal(t, 924.0, alias(-100, 1024, false))
	assert.Equal(t, 76.0, alias(1100, 1024, false))
	assert.Equal(t, 0.0, alias(2048, 1024, false))

	// Real: fold the second Nyquist zone.
	assert.Equal(t, 100.0, alias(100, 1024, true))
	assert.Equal(t, 424.0, alias(600, 1024, true))
	assert.Equal(t, 100.0, alias(-100, 1024, true))
	assert.Equal(t, 512.0, alias(512, 1024, true))
}

func TestLrBins(t *testing.T) {
	// ssb=0 snaps to the nearest whole cycle.
	l, r := lrBins(1024, true, 100.2, 0)
	assert.Equal(t, []int{100, 100}, []int{l, r})
	l, r = lrBins(1024, true, 100.7, 0)
	assert.Equal(t, []int{101, 101}, []int{l, r})

	// ssb>0 snaps to the nearest half cycle and spans 1+2·ssb bins.
	l, r = lrBins(1024, true, 100.1, 2)
	assert.Equal(t, []int{98, 102}, []int{l, r})

	// A half-cycle center narrows each side by half a bin: 2·ssb bins.
	l, r = lrBins(1024, true, 100.5, 2)
	assert.Equal(t, []int{99, 102}, []int{l, r})

	// Near DC the range may extend below zero; the mask resolves it.
	l, r = lrBins(1024, true, 0, 3)
	assert.Equal(t, []int{-3, 3}, []int{l, r})

	// Real spectra fold a near-Nyquist center back into the first zone.
	l, r = lrBins(1024, false, 1000, 0)
	assert.Equal(t, []int{24, 24}, []int{l, r})
}

func TestSetupBandFullAxis(t *testing.T) {
	vars := map[string]float64{"fbin": 1, "fdata": 64}
	mr := &measurer{msq: make([]float64, 64), nfft: 64, cplx: true, vars: vars}
	m := mr.newMask()
	require.NoError(t, setupBand(m, true, 0, 64, vars))
	assert.True(t, m.Full())
}

func TestSetupBandOffsetBand(t *testing.T) {
	vars := map[string]float64{"fbin": 1, "fdata": 64}
	mr := &measurer{msq: make([]float64, 64), nfft: 64, cplx: true, vars: vars}
	m := mr.newMask()
	// 16 Hz wide around 20 Hz: [12, 28].
	require.NoError(t, setupBand(m, true, 20, 16, vars))
	assert.Equal(t, [][2]int{{12, 29}}, m.Ranges())

	// Width clamps up to one bin.
	m2 := mr.newMask()
	require.NoError(t, setupBand(m2, true, 20, 0.001, vars))
	assert.Equal(t, 1, m2.Count())
}

// An interleaved converter: offset spurs at fs/2 and gain/timing images
// of the signal, all itemized and excluded from noise.
func TestAnalyzeInterleaving(t *testing.T) {
	const nfft = 256
	msq := make([]float64, nfft)
	msq[40] = 0.25  // signal
	msq[128] = 1e-4 // ILOS at fs/2
	msq[168] = 1e-5 // ILGT at A+fs/2 (40+128)

	cfg := NewConfig()
	require.NoError(t, cfg.SetFSample("256"))
	cfg.SetHD(1)
	cfg.EnFundImages = false
	cfg.SetIlv([]int{2})
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "40", 0))

	r, err := Analyze(cfg, msq, nfft, AxisDcLeft)
	require.NoError(t, err)

	assert.Equal(t, TagILOS, mustTone(t, r, "fs/2").Tag())
	assert.Equal(t, 128, mustTone(t, r, "fs/2").I1)
	assert.Equal(t, 168, mustTone(t, r, "A+fs/2").I1)
	assert.Equal(t, TagILGT, mustTone(t, r, "A+fs/2").Tag())

	ilvRSS := scalar(t, r, ResultILVRSS)
	assert.InDelta(t, 1.1e-4, ilvRSS*ilvRSS, 1e-9)
	// Interleaving energy is distortion by default, not noise.
	assert.Equal(t, 0.0, scalar(t, r, ResultNoiseRSS))

	// Flipping ilv_as_noise reclassifies it.
	cfg.IlvAsNoise = true
	r, err = Analyze(cfg, msq, nfft, AxisDcLeft)
	require.NoError(t, err)
	noiseRSS := scalar(t, r, ResultNoiseRSS)
	assert.InDelta(t, 1.1e-4, noiseRSS*noiseRSS, 1e-9)
	assert.Equal(t, 0.0, scalar(t, r, ResultDistRSS))
}

func mustTone(t *testing.T, r *Results, key string) *ToneResult {
	t.Helper()
	tone, err := r.Tone(key)
	require.NoError(t, err)
	return tone
}
