package fourier

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// Mean-square and RMS magnitudes are clipped into these bounds before
// taking logs, so dB values stay finite.
const (
	MinMS  = 1e-300
	MaxMS  = 1e+300
	MinRMS = 1e-150
	MaxRMS = 1e+150

	absMinDB = -3000.0
	absMaxDB = +3000.0
)

// BoundedDb10 converts a mean-square magnitude to dB.
func BoundedDb10(ms float64) float64 {
	return 10 * math.Log10(min(max(ms, MinMS), MaxMS))
}

// BoundedDb20 converts an RMS magnitude to dB.
func BoundedDb20(rms float64) float64 {
	return 20 * math.Log10(min(max(rms, MinRMS), MaxRMS))
}

// BoundedDb converts a complex amplitude to dB of its squared modulus.
func BoundedDb(z complex128) float64 {
	return BoundedDb10(real(z)*real(z) + imag(z)*imag(z))
}

// dbRatio is BoundedDb10(num/den) with zero operands pinned to the dB
// bounds: 0/0 is 0 dB, 0/x the floor, x/0 the ceiling.
func dbRatio(num, den float64) float64 {
	switch {
	case num <= 0 && den <= 0:
		return 0
	case num <= 0:
		return absMinDB
	case den <= 0:
		return absMaxDB
	default:
		return BoundedDb10(num / den)
	}
}

// ResultKind keys the scalar outputs of an analysis.
type ResultKind int

const (
	ResultSignalType ResultKind = iota // 0 = real, 1 = complex
	ResultNFFT
	ResultDataSize
	ResultFBin
	ResultFData
	ResultFSample
	ResultFShift
	ResultFSNR // full-scale-to-noise ratio (dB)
	ResultSNR
	ResultSINAD
	ResultSFDR
	ResultABN // average bin noise (dBFS)
	ResultNSD // noise spectral density (dBFS/Hz)
	ResultCarrierIndex
	ResultMaxSpurIndex
	ResultABWidth
	ResultABI1
	ResultABI2
	ResultABNBins
	ResultABRSS
	ResultSignalNBins
	ResultSignalRSS
	ResultCLKNBins
	ResultCLKRSS
	ResultHDNBins
	ResultHDRSS
	ResultILOSNBins
	ResultILOSRSS
	ResultILGTNBins
	ResultILGTRSS
	ResultIMDNBins
	ResultIMDRSS
	ResultUserDistNBins
	ResultUserDistRSS
	ResultTHDNBins
	ResultTHDRSS
	ResultILVNBins
	ResultILVRSS
	ResultDistNBins
	ResultDistRSS
	ResultNoiseNBins
	ResultNoiseRSS
	ResultNADNBins
	ResultNADRSS

	numResultKinds = int(ResultNADRSS) + 1
)

type resultInfo struct {
	name  string
	units string
}

var resultInfos = [numResultKinds]resultInfo{
	ResultSignalType:    {"signaltype", ""},
	ResultNFFT:          {"nfft", ""},
	ResultDataSize:      {"datasize", ""},
	ResultFBin:          {"fbin", "Hz"},
	ResultFData:         {"fdata", "S/s"},
	ResultFSample:       {"fsample", "S/s"},
	ResultFShift:        {"fshift", "Hz"},
	ResultFSNR:          {"fsnr", "dB"},
	ResultSNR:           {"snr", "dB"},
	ResultSINAD:         {"sinad", "dB"},
	ResultSFDR:          {"sfdr", "dB"},
	ResultABN:           {"abn", "dBFS"},
	ResultNSD:           {"nsd", "dBFS/Hz"},
	ResultCarrierIndex:  {"carrierindex", ""},
	ResultMaxSpurIndex:  {"maxspurindex", ""},
	ResultABWidth:       {"ab_width", "Hz"},
	ResultABI1:          {"ab_i1", ""},
	ResultABI2:          {"ab_i2", ""},
	ResultABNBins:       {"ab_nbins", ""},
	ResultABRSS:         {"ab_rss", ""},
	ResultSignalNBins:   {"signal_nbins", ""},
	ResultSignalRSS:     {"signal_rss", ""},
	ResultCLKNBins:      {"clk_nbins", ""},
	ResultCLKRSS:        {"clk_rss", ""},
	ResultHDNBins:       {"hd_nbins", ""},
	ResultHDRSS:         {"hd_rss", ""},
	ResultILOSNBins:     {"ilos_nbins", ""},
	ResultILOSRSS:       {"ilos_rss", ""},
	ResultILGTNBins:     {"ilgt_nbins", ""},
	ResultILGTRSS:       {"ilgt_rss", ""},
	ResultIMDNBins:      {"imd_nbins", ""},
	ResultIMDRSS:        {"imd_rss", ""},
	ResultUserDistNBins: {"userdist_nbins", ""},
	ResultUserDistRSS:   {"userdist_rss", ""},
	ResultTHDNBins:      {"thd_nbins", ""},
	ResultTHDRSS:        {"thd_rss", ""},
	ResultILVNBins:      {"ilv_nbins", ""},
	ResultILVRSS:        {"ilv_rss", ""},
	ResultDistNBins:     {"dist_nbins", ""},
	ResultDistRSS:       {"dist_rss", ""},
	ResultNoiseNBins:    {"noise_nbins", ""},
	ResultNoiseRSS:      {"noise_rss", ""},
	ResultNADNBins:      {"nad_nbins", ""},
	ResultNADRSS:        {"nad_rss", ""},
}

func (k ResultKind) String() string {
	if k < 0 || int(k) >= numResultKinds {
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
	return resultInfos[k].name
}

// Units returns the units annotation for the scalar, "" if unitless.
func (k ResultKind) Units() string {
	if k < 0 || int(k) >= numResultKinds {
		return ""
	}
	return resultInfos[k].units
}

// ToneResultKind keys the per-tone outputs of an analysis.
type ToneResultKind int

const (
	ToneOrderIndex ToneResultKind = iota
	ToneTag
	ToneFreq
	ToneFFinal
	ToneFWAvg
	ToneI1
	ToneI2
	ToneNBins
	ToneInBand
	ToneMag
	ToneMagDbfs
	ToneMagDbc
	TonePhase
	TonePhaseC

	numToneResultKinds = int(TonePhaseC) + 1
)

var toneResultNames = [numToneResultKinds]string{
	"order_index", "tag", "freq", "ffinal", "fwavg", "i1", "i2", "nbins",
	"in_band", "mag", "mag_dbfs", "mag_dbc", "phase", "phase_c",
}

func (k ToneResultKind) String() string {
	if k < 0 || int(k) >= numToneResultKinds {
		return fmt.Sprintf("ToneResultKind(%d)", int(k))
	}
	return toneResultNames[k]
}

// flatKeyCoupler joins a tone key and a field name into a flat key.
const flatKeyCoupler = ":"

// FlatToneKey builds the flat form "<toneKey>:<field>".
func FlatToneKey(toneKey string, kind ToneResultKind) string {
	return toneKey + flatKeyCoupler + kind.String()
}

// SplitKey splits a flat key into tone key and field name. A key without
// a coupler returns ("<key>", "").
func SplitKey(flat string) (toneKey, field string) {
	if i := strings.Index(flat, flatKeyCoupler); i >= 0 {
		return flat[:i], flat[i+len(flatKeyCoupler):]
	}
	return flat, ""
}

// ToneResult is the record of one measured tone. I1, I2, NBins, and
// InBand shadow the map entries as typed fields.
type ToneResult struct {
	values [numToneResultKinds]float64
	have   [numToneResultKinds]bool

	I1     int
	I2     int
	NBins  int
	InBand bool
}

// Get returns a tone field by kind.
func (r *ToneResult) Get(kind ToneResultKind) (float64, error) {
	if kind < 0 || int(kind) >= numToneResultKinds || !r.have[kind] {
		return 0, fmt.Errorf("%w: tone result %q not found", ErrKey, kind.String())
	}
	return r.values[kind], nil
}

// Tag returns the component tag recorded on the tone.
func (r *ToneResult) Tag() CompTag {
	return CompTag(r.values[ToneTag])
}

func (r *ToneResult) set(kind ToneResultKind, value float64) {
	r.values[kind] = value
	r.have[kind] = true
	switch kind {
	case ToneI1:
		r.I1 = int(value)
	case ToneI2:
		r.I2 = int(value)
	case ToneNBins:
		r.NBins = int(value)
	case ToneInBand:
		r.InBand = value != 0
	}
}

func (r *ToneResult) setMag(ms float64) {
	r.set(ToneMag, math.Sqrt(ms))
	r.set(ToneMagDbfs, BoundedDb10(ms))
}

func nullToneResult(tag CompTag) *ToneResult {
	r := &ToneResult{}
	r.set(ToneTag, float64(tag))
	r.set(ToneFreq, 0)
	r.set(ToneFFinal, 0)
	r.set(ToneFWAvg, 0)
	r.set(ToneInBand, 0)
	r.set(ToneI1, -1)
	r.set(ToneI2, -1)
	r.set(ToneNBins, 0)
	r.setMag(0)
	return r
}

// Results holds the outputs of one analysis: a scalar map keyed by
// ResultKind and per-tone records in measurement order.
type Results struct {
	scalars [numResultKinds]float64
	haveSc  [numResultKinds]bool

	toneKeys []string
	tones    map[string]*ToneResult
}

func newResults() *Results {
	return &Results{tones: map[string]*ToneResult{}}
}

func (r *Results) set(kind ResultKind, value float64) {
	r.scalars[kind] = value
	r.haveSc[kind] = true
}

// Get returns a scalar result by kind.
func (r *Results) Get(kind ResultKind) (float64, error) {
	if kind < 0 || int(kind) >= numResultKinds || !r.haveSc[kind] {
		return 0, fmt.Errorf("%w: result %q not found", ErrKey, kind.String())
	}
	return r.scalars[kind], nil
}

// ToneKeys returns the tone keys in measurement order.
func (r *Results) ToneKeys() []string {
	out := make([]string, len(r.toneKeys))
	copy(out, r.toneKeys)
	return out
}

// ContainsTone reports whether a tone was recorded under key.
func (r *Results) ContainsTone(key string) bool {
	_, ok := r.tones[key]
	return ok
}

// Tone returns the record of the tone measured under key.
func (r *Results) Tone(key string) (*ToneResult, error) {
	t, ok := r.tones[key]
	if !ok {
		return nil, fmt.Errorf("%w: tone %q not found", ErrKey, key)
	}
	return t, nil
}

func (r *Results) addTone(key string, t *ToneResult) {
	if _, ok := r.tones[key]; ok {
		return
	}
	r.toneKeys = append(r.toneKeys, key)
	r.tones[key] = t
}

// Flat resolves a flat key: either a scalar name like "sfdr" or a tone
// field like "wo:mag_dbc".
func (r *Results) Flat(flat string) (float64, error) {
	toneKey, field := SplitKey(flat)
	if field == "" {
		for k := 0; k < numResultKinds; k++ {
			if resultInfos[k].name == toneKey {
				return r.Get(ResultKind(k))
			}
		}
		return 0, fmt.Errorf("%w: result %q not found", ErrKey, flat)
	}
	tone, err := r.Tone(toneKey)
	if err != nil {
		return 0, err
	}
	for k := 0; k < numToneResultKinds; k++ {
		if toneResultNames[k] == field {
			return tone.Get(ToneResultKind(k))
		}
	}
	return 0, fmt.Errorf("%w: tone field %q not found", ErrKey, field)
}

// ResultData projects the scalar results into Name/Value/Units rows for
// the table renderer.
func (r *Results) ResultData() [][]string {
	rows := make([][]string, 0, numResultKinds)
	for k := 0; k < numResultKinds; k++ {
		if !r.haveSc[k] {
			continue
		}
		kind := ResultKind(k)
		rows = append(rows, []string{
			kind.String(),
			strconv.FormatFloat(r.scalars[k], 'g', 7, 64),
			kind.Units(),
		})
	}
	return rows
}

// ToneData projects the per-tone results into rows of
// [Key, Tag, FFinal, Mag dBFS, Mag dBc, Phase] in measurement order.
func (r *Results) ToneData() [][]string {
	rows := make([][]string, 0, len(r.toneKeys))
	for _, key := range r.toneKeys {
		t := r.tones[key]
		rows = append(rows, []string{
			key,
			t.Tag().String(),
			strconv.FormatFloat(t.values[ToneFFinal], 'g', 7, 64),
			strconv.FormatFloat(t.values[ToneMagDbfs], 'f', 2, 64),
			strconv.FormatFloat(t.values[ToneMagDbc], 'f', 2, 64),
			strconv.FormatFloat(t.values[TonePhase], 'f', 4, 64),
		})
	}
	return rows
}

// phaseOf returns the argument of z, 0 for a zero bin.
func phaseOf(z complex128) float64 {
	if z == 0 {
		return 0
	}
	return cmplx.Phase(z)
}
