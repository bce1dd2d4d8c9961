package fourier

import (
	"fmt"
	"math"

	"github.com/linuxmatters/specan/binmask"
	"github.com/linuxmatters/specan/expr"
)

// Composite mask identifiers. CompTag values 0..8 index the per-tag
// masks; the composites start above them.
const (
	maskAB    = 0x1000 + iota // analysis band
	maskComp                  // all components found so far
	maskWO                    // worst-other search
	maskNAD                   // noise and distortion
	maskTHD                   // HD + IMD
	maskILV                   // ILOS + ILGT
	maskDist                  // THD + UserDist [+ DC] [+ CLK] [+ ILV]
	maskNoise                 // NAD - Dist
)

// measurer carries the state threaded through the component loop: the
// spectrum, the mask set, and the variable scope.
type measurer struct {
	msq   []float64
	nfft  int
	cplx  bool
	masks map[int]*binmask.Mask
	vars  map[string]float64
}

func newMasks(cplx bool, size int) map[int]*binmask.Mask {
	mode := binmask.Stop
	if cplx {
		mode = binmask.Wrap
	}
	masks := map[int]*binmask.Mask{}
	for tag := 0; tag < numCompTags; tag++ {
		masks[tag] = binmask.New(mode, size)
	}
	for _, id := range []int{maskAB, maskComp, maskWO, maskNAD, maskTHD, maskILV, maskDist, maskNoise} {
		masks[id] = binmask.New(mode, size)
	}
	return masks
}

// alias reduces freq into [0, fs), folding into [0, fs/2] when fold is
// set (real spectra).
func alias(freq, fs float64, fold bool) float64 {
	freq -= math.Floor(freq/fs) * fs
	if fold && fs < 2*freq {
		return fs - freq
	}
	return freq
}

// lrBins converts a tone center (in cycles, i.e. bins) and an SSB
// half-width into an inclusive bin range. With ssb > 0 the center snaps
// to the nearest half cycle, otherwise to the nearest whole cycle; a
// center on a half cycle narrows the half-width by one half bin so the
// range still spans 2·ssb bins. The result may extend past the axis;
// the mask clamps (real) or wraps (complex) it.
func lrBins(nfft int, cplx bool, cycles float64, ssb int) (left, right int) {
	nearest := cycles
	onHalfCycle := false
	if ssb > 0 {
		nearest = math.Round(nearest * 2)
		onHalfCycle = math.Abs(math.Mod(nearest, 2)) == 1
		nearest *= 0.5
	} else {
		nearest = math.Round(nearest)
	}
	nearest = alias(nearest, float64(nfft), !cplx)
	maxSsb := min(nfft/2, MaxSSB)
	if isEven(nfft) && !onHalfCycle {
		// An even NFFT with a whole-cycle center fits at most nfft-1 bins.
		maxSsb--
	}
	ssb = min(max(ssb, MinSSB), maxSsb)
	halfWidth := float64(ssb)
	if onHalfCycle {
		halfWidth -= 0.5
	}
	return int(math.Round(nearest - halfWidth)), int(math.Round(nearest + halfWidth))
}

// coverRange ORs the inclusive bin range [i1, i2] (wrapped when i1 > i2)
// into a mask.
func coverRange(m *binmask.Mask, i1, i2 int) error {
	if i1 > i2 {
		i2 += m.Size()
	}
	return m.SetRange(i1, i2)
}

// fwavg returns the magnitude-weighted mean frequency of the bins in m,
// or center·fbin when the range holds no energy.
func (mr *measurer) fwavg(m *binmask.Mask, center, fbin, sum float64) float64 {
	if sum <= 0 {
		return center * fbin
	}
	var weighted float64
	for _, r := range m.Ranges() {
		for i := r[0]; i < r[1]; i++ {
			weighted += mr.msq[i] * float64(i) * fbin
		}
	}
	return weighted / sum
}

// measTone is the shared tail of the measurement routines: cover the
// masks, read out the range, sum the energy, and build the tone record.
func (mr *measurer) measTone(tag CompTag, m *binmask.Mask, freq, ffinal, center float64) (*ToneResult, error) {
	if tag != TagNoise {
		if err := mr.masks[int(tag)].Or(m); err != nil {
			return nil, err
		}
	}
	if err := mr.masks[maskComp].Or(m); err != nil {
		return nil, err
	}
	i1, i2, nbins, err := m.Indexes()
	if err != nil {
		return nil, fmt.Errorf("%w: component range: %v", ErrInternal, err)
	}
	sum, err := m.Sum(mr.msq)
	if err != nil {
		return nil, err
	}
	fbin := mr.vars["fbin"]
	inBand := mr.masks[maskAB].Overlaps(i1, i2)
	r := &ToneResult{}
	r.set(ToneTag, float64(tag))
	r.set(ToneFreq, freq)
	r.set(ToneFFinal, ffinal)
	r.set(ToneFWAvg, mr.fwavg(m, center, fbin, sum))
	r.set(ToneI1, float64(i1))
	r.set(ToneI2, float64(i2))
	r.set(ToneNBins, float64(nbins))
	r.set(ToneInBand, b2f(inBand))
	r.setMag(sum)
	return r, nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (mr *measurer) newMask() *binmask.Mask {
	mode := binmask.Stop
	if mr.cplx {
		mode = binmask.Wrap
	}
	return binmask.New(mode, len(mr.msq))
}

// measDC measures the DC component: bin 0 with the configured SSB.
func (mr *measurer) measDC(comp Component) (*ToneResult, error) {
	left, right := lrBins(mr.nfft, mr.cplx, 0, comp.SSB)
	m := mr.newMask()
	if err := m.SetRange(left, right); err != nil {
		return nil, err
	}
	return mr.measTone(TagDC, m, 0, 0, 0)
}

// measFixedTone measures a tone at the frequency given by the component's
// expression, after shift and aliasing. The resolved frequency is
// published to the variable scope under key so later expressions can
// reference it.
func (mr *measurer) measFixedTone(key string, comp Component) (*ToneResult, error) {
	fbin := mr.vars["fbin"]
	fdata := mr.vars["fdata"]
	fshift := mr.vars["fshift"]
	fe, err := expr.Parse(comp.Freq)
	if err != nil {
		return nil, err
	}
	freq, err := fe.Eval(mr.vars)
	if err != nil {
		return nil, err
	}
	ffinal := alias(freq+fshift, fdata, !mr.cplx)
	left, right := lrBins(mr.nfft, mr.cplx, ffinal/fbin, comp.SSB)
	mr.vars[key] = freq
	m := mr.newMask()
	if err := m.SetRange(left, right); err != nil {
		return nil, err
	}
	center := float64(left+right) / 2
	return mr.measTone(comp.Tag, m, freq, ffinal, center)
}

// searchBandMask builds the mask for a user-specified search band, using
// the same construction as the analysis band.
func (mr *measurer) searchBandMask(centerExpr, widthExpr string) (*binmask.Mask, error) {
	center, err := evalExpr(centerExpr, mr.vars)
	if err != nil {
		return nil, err
	}
	width, err := evalExpr(widthExpr, mr.vars)
	if err != nil {
		return nil, err
	}
	m := mr.newMask()
	if err := setupBand(m, mr.cplx, center, width, mr.vars); err != nil {
		return nil, err
	}
	return m, nil
}

// measMaxTone finds the largest magnitude in the analysis band not yet
// claimed by another component, optionally restricted to the component's
// own search band. The range is bounded by the contiguous free span
// around the maximum, so a max tone stops where it runs into a
// neighboring component.
func (mr *measurer) measMaxTone(key string, comp Component) (*ToneResult, error) {
	search := mr.masks[maskAB].Clone()
	if err := search.UnsetRanges(mr.masks[maskComp]); err != nil {
		return nil, err
	}
	if comp.Center != "" && comp.Width != "" {
		band, err := mr.searchBandMask(comp.Center, comp.Width)
		if err != nil {
			return nil, err
		}
		if err := search.And(band); err != nil {
			return nil, err
		}
	}
	maxIndex, lower, upper, err := search.FindMax(mr.msq)
	if err != nil {
		return nil, err
	}
	if maxIndex < 0 {
		return nullToneResult(comp.Tag), nil
	}
	fbin := mr.vars["fbin"]
	fshift := mr.vars["fshift"]
	ffinal := float64(maxIndex) * fbin
	freq := ffinal - fshift
	left, right := lrBins(mr.nfft, mr.cplx, float64(maxIndex), comp.SSB)
	// Unlike a fixed tone, a max tone stops when it runs into another
	// component. DC is always found first at bin 0, so the range never
	// needs to wrap.
	left = max(left, lower)
	right = min(right, upper)
	m := mr.newMask()
	if err := m.SetRange(left, right); err != nil {
		return nil, err
	}
	mr.vars[key] = freq
	return mr.measTone(comp.Tag, m, freq, ffinal, float64(maxIndex))
}

// measWOTone finds the next worst-other tone in the WO search mask and
// removes the measured range from it.
func (mr *measurer) measWOTone(comp Component) (*ToneResult, error) {
	woMask := mr.masks[maskWO]
	maxIndex, lower, upper, err := woMask.FindMax(mr.msq)
	if err != nil {
		return nil, err
	}
	if maxIndex < 0 {
		return nullToneResult(comp.Tag), nil
	}
	fbin := mr.vars["fbin"]
	fshift := mr.vars["fshift"]
	ffinal := float64(maxIndex) * fbin
	freq := ffinal - fshift
	left, right := lrBins(mr.nfft, mr.cplx, float64(maxIndex), comp.SSB)
	left = max(left, lower)
	right = min(right, upper)
	m := mr.newMask()
	if err := m.SetRange(left, right); err != nil {
		return nil, err
	}
	if err := mr.masks[maskComp].Or(m); err != nil {
		return nil, err
	}
	if err := woMask.UnsetRanges(m); err != nil {
		return nil, err
	}
	i1, i2, nbins, err := m.Indexes()
	if err != nil {
		return nil, fmt.Errorf("%w: worst-other range: %v", ErrInternal, err)
	}
	sum, err := m.Sum(mr.msq)
	if err != nil {
		return nil, err
	}
	r := &ToneResult{}
	r.set(ToneTag, float64(comp.Tag))
	r.set(ToneFreq, freq)
	r.set(ToneFFinal, ffinal)
	r.set(ToneFWAvg, mr.fwavg(m, float64(maxIndex), fbin, sum))
	r.set(ToneInBand, 1) // in-band by construction of the WO mask
	r.set(ToneI1, float64(i1))
	r.set(ToneI2, float64(i2))
	r.set(ToneNBins, float64(nbins))
	r.setMag(sum)
	return r, nil
}

func evalExpr(raw string, scope map[string]float64) (float64, error) {
	e, err := expr.Parse(raw)
	if err != nil {
		return 0, err
	}
	return e.Eval(scope)
}

// setupBand sets m to the band centered at center (Hz) with the given
// width (Hz). The width clamps to [fbin, fdata] and rounds to whole
// bins; the center snaps to the nearest half bin.
func setupBand(m *binmask.Mask, cplx bool, center, width float64, vars map[string]float64) error {
	fbin := vars["fbin"]
	fdata := vars["fdata"]
	width = min(max(width, fbin), fdata)
	width = math.Round(width / fbin)
	if int(width) == m.Size() {
		m.SetAll()
		return nil
	}
	center = alias(center, fdata, !cplx)
	center = math.Round(2*center/fbin) / 2 // nearest half cycle
	left := int(math.Ceil(center - width/2))
	right := int(math.Floor(center + width/2))
	return m.SetRange(left, right)
}
