package fourier

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/linuxmatters/specan/binmask"
	"github.com/linuxmatters/specan/expr"
)

// Analyze runs one analysis over a mean-square magnitude spectrum.
// A spectrum of NFFT bins is analyzed as complex (full circle); one of
// NFFT/2+1 bins as real. Phase results require complex bin data; see
// AnalyzeComplex.
func Analyze(cfg *Config, msq []float64, nfft int, axis AxisType) (*Results, error) {
	return analyze(cfg, msq, nil, nfft, axis)
}

// AnalyzeComplex runs one analysis over complex FFT bin data, enabling
// the phase outputs. The mean-square spectrum is derived from the bins.
func AnalyzeComplex(cfg *Config, bins []complex128, nfft int, axis AxisType) (*Results, error) {
	msq := make([]float64, len(bins))
	for i, z := range bins {
		msq[i] = real(z)*real(z) + imag(z)*imag(z)
	}
	return analyze(cfg, msq, bins, nfft, axis)
}

type indexMag struct {
	index int
	ms    float64
}

func analyze(cfg *Config, msq []float64, fftData []complex128, nfft int, axis AxisType) (*Results, error) {
	cplx, err := validateSpectrum(msq, fftData, nfft)
	if err != nil {
		return nil, err
	}
	vars, err := cfg.initVars(nfft)
	if err != nil {
		return nil, err
	}
	mr := &measurer{
		msq:   msq,
		nfft:  nfft,
		cplx:  cplx,
		masks: newMasks(cplx, len(msq)),
		vars:  vars,
	}
	fbin := vars["fbin"]
	fdata := vars["fdata"]
	fsample := vars["fs"]
	fshift := vars["fshift"]

	if err := cfg.setupAnalysisBand(mr); err != nil {
		return nil, err
	}

	// CLK and ILOS components may overlap; the ILOS tag wins, and
	// ilosClkKeys lists the tones whose ranges also count as CLK.
	keys, comps, ilosClkKeys, err := cfg.GenerateComps(cplx)
	if err != nil {
		return nil, err
	}

	results := newResults()
	carrier := indexMag{index: -1}
	maxspur := indexMag{index: -1}

	updateMaxspur := func(keyIndex int, r *ToneResult) {
		// A maxspur candidate is in-band, non-Signal, not DC (unless DC
		// counts as distortion), and clear of every Signal range.
		ffinal, _ := r.Get(ToneFFinal)
		if ffinal == 0 && !cfg.DcAsDist {
			return
		}
		if mr.masks[int(TagSignal)].Overlaps(r.I1, r.I2) {
			return
		}
		mag, _ := r.Get(ToneMag)
		ms := mag * mag
		if maxspur.index < 0 || maxspur.ms < ms {
			maxspur = indexMag{keyIndex, ms}
		}
	}
	toneUpdates := func(key string, keyIndex int, tag CompTag, r *ToneResult) error {
		if _, ok := ilosClkKeys[key]; ok {
			if err := coverRange(mr.masks[int(TagCLK)], r.I1, r.I2); err != nil {
				return err
			}
		}
		if !r.InBand {
			return nil
		}
		if tag == TagSignal {
			mag, _ := r.Get(ToneMag)
			ms := mag * mag
			if carrier.index < 0 || carrier.ms < ms {
				carrier = indexMag{keyIndex, ms}
			}
		} else {
			updateMaxspur(keyIndex, r)
		}
		return nil
	}

	// Main component loop, up to the first worst-other component.
	keyIndex := 0
	for ; keyIndex < len(keys); keyIndex++ {
		key := keys[keyIndex]
		comp := comps[key]
		if comp.Type == TypeWOTone {
			break
		}
		var r *ToneResult
		switch comp.Type {
		case TypeDC:
			r, err = mr.measDC(comp)
			if err == nil && r.InBand && cfg.DcAsDist {
				updateMaxspur(keyIndex, r)
			}
		case TypeFixedTone:
			r, err = mr.measFixedTone(key, comp)
			if err == nil {
				err = toneUpdates(key, keyIndex, comp.Tag, r)
			}
		case TypeMaxTone:
			r, err = mr.measMaxTone(key, comp)
			if err == nil {
				err = toneUpdates(key, keyIndex, comp.Tag, r)
			}
		default:
			err = fmt.Errorf("%w: unsupported component type %v", ErrInternal, comp.Type)
		}
		if err != nil {
			return nil, err
		}
		results.addTone(key, r)
	}

	// Worst others, measured then reassigned in descending magnitude so
	// wo1 is always the strongest.
	woMask := mr.masks[maskAB].Clone()
	if err := woMask.UnsetRanges(mr.masks[maskComp]); err != nil {
		return nil, err
	}
	mr.masks[maskWO] = woMask
	firstWOIndex := keyIndex
	var woTones []struct {
		r  *ToneResult
		ms float64
	}
	for ; keyIndex < len(keys); keyIndex++ {
		comp := comps[keys[keyIndex]]
		r, err := mr.measWOTone(comp)
		if err != nil {
			return nil, err
		}
		mag, _ := r.Get(ToneMag)
		woTones = append(woTones, struct {
			r  *ToneResult
			ms float64
		}{r, mag * mag})
	}
	sort.SliceStable(woTones, func(i, j int) bool { return woTones[i].ms > woTones[j].ms })
	for i, wt := range woTones {
		newKey := "wo"
		if cfg.wo > 1 {
			newKey += strconv.Itoa(i + 1)
		}
		if i == 0 {
			updateMaxspur(firstWOIndex, wt.r)
		}
		results.addTone(newKey, wt.r)
	}

	// Second pass: order index, dBc, and phase.
	carrierPhase := 0.0
	if carrier.index >= 0 {
		carrierTone := results.tones[keys[carrier.index]]
		carrierPhase = faPhase(carrierTone, fftData, cplx, fdata, fshift)
	}
	for i, key := range keys {
		r := results.tones[key]
		mag, _ := r.Get(ToneMag)
		phase := faPhase(r, fftData, cplx, fdata, fshift)
		r.set(ToneOrderIndex, float64(i))
		r.set(ToneMagDbc, dbRatio(mag*mag, carrier.ms))
		r.set(TonePhase, phase)
		r.set(TonePhaseC, phase-carrierPhase)
	}

	// Final-frequency normalization for DC-centered complex axes.
	if cplx && axis == AxisDcCenter {
		for _, r := range results.tones {
			if ffinal, _ := r.Get(ToneFFinal); fdata <= 2*ffinal {
				r.set(ToneFFinal, ffinal-fdata)
			}
		}
	}

	// Components finished; aggregate the rest of the results.
	cfg.finalizeMasks(mr.masks)
	abI1, abI2, abNBinsInt, err := mr.masks[maskAB].Indexes()
	if err != nil {
		return nil, fmt.Errorf("%w: analysis band: %v", ErrInternal, err)
	}
	abNBins := float64(abNBinsInt)
	abWidth := abNBins * fbin
	if !cplx {
		abWidth = math.Min(fdata/2, abWidth)
	}
	maskSum := func(id int) (float64, error) { return mr.masks[id].Sum(msq) }
	nadSS, err := maskSum(maskNAD)
	if err != nil {
		return nil, err
	}
	noiseSS, err := maskSum(maskNoise)
	if err != nil {
		return nil, err
	}
	signalSS, err := maskSum(int(TagSignal))
	if err != nil {
		return nil, err
	}
	noiseNBins := float64(mr.masks[maskNoise].Count())

	results.set(ResultSignalType, b2f(cplx))
	results.set(ResultNFFT, float64(nfft))
	results.set(ResultDataSize, float64(len(msq)))
	results.set(ResultFBin, fbin)
	results.set(ResultFData, fdata)
	results.set(ResultFSample, fsample)
	results.set(ResultFShift, fshift)
	results.set(ResultFSNR, dbRatio(1, noiseSS))
	results.set(ResultSNR, dbRatio(signalSS, noiseSS))
	results.set(ResultSINAD, dbRatio(signalSS, nadSS))
	results.set(ResultSFDR, dbRatio(carrier.ms, maxspur.ms))
	results.set(ResultABN, dbRatio(noiseSS/math.Max(1, noiseNBins), 1))
	results.set(ResultNSD, dbRatio(noiseSS/abWidth, 1))
	results.set(ResultCarrierIndex, float64(carrier.index))
	results.set(ResultMaxSpurIndex, float64(maxspur.index))
	results.set(ResultABWidth, abWidth)
	results.set(ResultABI1, float64(abI1))
	results.set(ResultABI2, float64(abI2))
	results.set(ResultABNBins, abNBins)
	type tagAgg struct {
		nbins ResultKind
		rss   ResultKind
		mask  int
	}
	aggs := []tagAgg{
		{ResultSignalNBins, ResultSignalRSS, int(TagSignal)},
		{ResultCLKNBins, ResultCLKRSS, int(TagCLK)},
		{ResultHDNBins, ResultHDRSS, int(TagHD)},
		{ResultILOSNBins, ResultILOSRSS, int(TagILOS)},
		{ResultILGTNBins, ResultILGTRSS, int(TagILGT)},
		{ResultIMDNBins, ResultIMDRSS, int(TagIMD)},
		{ResultUserDistNBins, ResultUserDistRSS, int(TagUserDist)},
		{ResultTHDNBins, ResultTHDRSS, maskTHD},
		{ResultILVNBins, ResultILVRSS, maskILV},
		{ResultDistNBins, ResultDistRSS, maskDist},
		{ResultNoiseNBins, ResultNoiseRSS, maskNoise},
		{ResultNADNBins, ResultNADRSS, maskNAD},
	}
	abSS, err := maskSum(maskAB)
	if err != nil {
		return nil, err
	}
	results.set(ResultABRSS, math.Sqrt(abSS))
	for _, a := range aggs {
		ss, err := maskSum(a.mask)
		if err != nil {
			return nil, err
		}
		results.set(a.nbins, float64(mr.masks[a.mask].Count()))
		results.set(a.rss, math.Sqrt(ss))
	}
	return results, nil
}

// validateSpectrum checks sizes and magnitudes before any measurement,
// so a failed call never yields partial results.
func validateSpectrum(msq []float64, fftData []complex128, nfft int) (cplx bool, err error) {
	if len(msq) == 0 {
		return false, fmt.Errorf("%w: empty spectrum", ErrDimension)
	}
	if nfft < 2 {
		return false, fmt.Errorf("%w: NFFT %d < 2", ErrDimension, nfft)
	}
	switch len(msq) {
	case nfft:
		cplx = true
	case nfft/2 + 1:
		cplx = false
	default:
		return false, fmt.Errorf("%w: spectrum size %d inconsistent with NFFT %d", ErrDimension, len(msq), nfft)
	}
	if fftData != nil && len(fftData) != len(msq) {
		return false, fmt.Errorf("%w: FFT data size %d, spectrum size %d", ErrDimension, len(fftData), len(msq))
	}
	for i, v := range msq {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false, fmt.Errorf("%w: non-finite magnitude at bin %d", ErrBadSpectrum, i)
		}
		if v < 0 {
			return false, fmt.Errorf("%w: negative magnitude at bin %d", ErrBadSpectrum, i)
		}
	}
	return cplx, nil
}

// initVars builds the variable scope: user variables plus fs, fdata,
// fbin, and fshift, resolved in that order.
func (c *Config) initVars(nfft int) (map[string]float64, error) {
	vars := c.Vars()
	fs, err := evalExpr(c.fsample, vars)
	if err != nil {
		return nil, err
	}
	if fs <= 0 {
		return nil, fmt.Errorf("%w: fs <= 0", expr.ErrEval)
	}
	vars["fs"] = fs
	fdata, err := evalExpr(c.fdata, vars)
	if err != nil {
		return nil, err
	}
	if fdata <= 0 {
		return nil, fmt.Errorf("%w: fdata <= 0", expr.ErrEval)
	}
	vars["fdata"] = fdata
	vars["fbin"] = fdata / float64(nfft)
	fshift, err := evalExpr(c.fshift, vars)
	if err != nil {
		return nil, err
	}
	vars["fshift"] = fshift
	return vars, nil
}

func (c *Config) setupAnalysisBand(mr *measurer) error {
	center, err := evalExpr(c.abCenter, mr.vars)
	if err != nil {
		return err
	}
	width, err := evalExpr(c.abWidth, mr.vars)
	if err != nil {
		return err
	}
	return setupBand(mr.masks[maskAB], mr.cplx, center, width, mr.vars)
}

// finalizeMasks derives the composite masks from the per-tag masks.
// Order matters: Signal trims to the band first, NAD excludes DC and
// Signal, every other tag trims to NAD, and Noise is what distortion
// leaves behind.
func (c *Config) finalizeMasks(masks map[int]*binmask.Mask) {
	ab := masks[maskAB]
	sig := masks[int(TagSignal)]
	_ = sig.And(ab)
	nad := ab.Clone()
	if !c.DcAsDist {
		_ = nad.UnsetRanges(masks[int(TagDC)])
	}
	_ = nad.UnsetRanges(sig)
	masks[maskNAD] = nad
	for tag := 0; tag < numCompTags; tag++ {
		if tag != int(TagSignal) {
			_ = masks[tag].And(nad)
		}
	}
	thd := masks[int(TagHD)].Clone()
	_ = thd.Or(masks[int(TagIMD)])
	masks[maskTHD] = thd
	ilv := masks[int(TagILOS)].Clone()
	_ = ilv.Or(masks[int(TagILGT)])
	masks[maskILV] = ilv
	dist := thd.Clone()
	_ = dist.Or(masks[int(TagUserDist)])
	if c.DcAsDist {
		_ = dist.Or(masks[int(TagDC)])
	}
	if !c.ClkAsNoise {
		_ = dist.Or(masks[int(TagCLK)])
	}
	if !c.IlvAsNoise {
		_ = dist.Or(ilv)
	}
	masks[maskDist] = dist
	noise := nad.Clone()
	_ = noise.UnsetRanges(dist)
	masks[maskNoise] = noise
}

// faPhase reads a tone's phase from the complex bin data. Only
// single-bin tones have a defined phase; real spectra invert the phase
// when the aliased frequency falls in the second Nyquist zone.
func faPhase(r *ToneResult, fftData []complex128, cplx bool, fdata, fshift float64) float64 {
	if fftData == nil || r.NBins != 1 {
		return 0
	}
	phase := phaseOf(fftData[r.I1])
	if !cplx {
		freq, _ := r.Get(ToneFreq)
		f := freq + fshift
		f -= math.Floor(f/fdata) * fdata
		if fdata <= 2*f {
			phase = -phase
		}
	}
	return phase
}
