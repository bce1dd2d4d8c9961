package fourier

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"

	"github.com/linuxmatters/specan/expr"
)

// Parameter limits and defaults.
const (
	MinHD, MaxHD, DefHD    = 1, 99, 6
	MinIMD, MaxIMD, DefIMD = 1, 9, 3
	MinWO, MaxWO, DefWO    = 1, 9, 1
	MinSSB, MaxSSB         = 0, 1 << 29
	MinClk, MaxClk         = 2, 256
	MinIlv, MaxIlv         = 2, 64
)

var (
	woPattern    = regexp.MustCompile(`^wo[1-9]?$`)
	reservedKeys = map[string]struct{}{
		"co":     {}, // comp/var : converter offset
		"dc":     {}, // comp     : DC
		"fbin":   {}, // var      : frequency bin size
		"fdata":  {}, // var      : data rate
		"fs":     {}, // var      : sample rate
		"fshift": {}, // var      : shift frequency
	}
)

// Config holds the analysis specification: behavior flags, distortion
// orders, SSB defaults, symbolic frequency expressions, clock and
// interleaving factors, user components, and user variables.
//
// A Config is not safe for concurrent mutation; a fully built Config may
// be shared read-only between goroutines running Analyze.
type Config struct {
	// Flags.
	ClkAsNoise   bool // count clock spurs as noise instead of distortion
	DcAsDist     bool // count DC as distortion (and as an SFDR candidate)
	EnConvOffset bool // measure a converter-offset tone at 0 Hz
	EnFundImages bool // measure fundamental images (complex spectra)
	EnQuadErrors bool // measure quadrature-error twins (complex spectra)
	IlvAsNoise   bool // count interleaving spurs as noise

	hd, imd, wo            int
	ssbDef, ssbDC          int
	ssbSig, ssbWO          int
	abCenter, abWidth      string
	fdata, fsample, fshift string
	clk, ilv               []int
	userKeys               []string
	userComps              map[string]Component
	userVars               map[string]float64
}

// NewConfig returns a Config with the default specification: a full-band
// analysis of HD up to order 6, IMD up to order 3, and one worst-other
// tone.
func NewConfig() *Config {
	return &Config{
		EnFundImages: true,
		hd:           DefHD,
		imd:          DefIMD,
		wo:           DefWO,
		ssbDef:       MinSSB,
		ssbDC:        -1,
		ssbSig:       -1,
		ssbWO:        -1,
		abCenter:     "0",
		abWidth:      "fdata",
		fdata:        "fs",
		fsample:      "1",
		fshift:       "0",
		userComps:    map[string]Component{},
		userVars:     map[string]float64{},
	}
}

// Reset restores the default specification.
func (c *Config) Reset() { *c = *NewConfig() }

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.clk = slices.Clone(c.clk)
	out.ilv = slices.Clone(c.ilv)
	out.userKeys = slices.Clone(c.userKeys)
	out.userComps = maps.Clone(c.userComps)
	out.userVars = maps.Clone(c.userVars)
	return &out
}

// Equal reports whether both configurations are identical.
func (c *Config) Equal(o *Config) bool {
	return c.ClkAsNoise == o.ClkAsNoise &&
		c.DcAsDist == o.DcAsDist &&
		c.EnConvOffset == o.EnConvOffset &&
		c.EnFundImages == o.EnFundImages &&
		c.EnQuadErrors == o.EnQuadErrors &&
		c.IlvAsNoise == o.IlvAsNoise &&
		c.hd == o.hd && c.imd == o.imd && c.wo == o.wo &&
		c.ssbDef == o.ssbDef && c.ssbDC == o.ssbDC &&
		c.ssbSig == o.ssbSig && c.ssbWO == o.ssbWO &&
		c.abCenter == o.abCenter && c.abWidth == o.abWidth &&
		c.fdata == o.fdata && c.fsample == o.fsample && c.fshift == o.fshift &&
		slices.Equal(c.clk, o.clk) && slices.Equal(c.ilv, o.ilv) &&
		slices.Equal(c.userKeys, o.userKeys) &&
		maps.Equal(c.userComps, o.userComps) &&
		maps.Equal(c.userVars, o.userVars)
}

// IsReserved reports whether key is reserved for engine use.
func IsReserved(key string) bool {
	if _, ok := reservedKeys[key]; ok {
		return true
	}
	return woPattern.MatchString(key)
}

// IsComp reports whether key names a user component.
func (c *Config) IsComp(key string) bool {
	_, ok := c.userComps[key]
	return ok
}

// IsVar reports whether key names a user variable.
func (c *Config) IsVar(key string) bool {
	_, ok := c.userVars[key]
	return ok
}

func (c *Config) checkKeyAvailable(key string) error {
	switch {
	case IsReserved(key):
		return fmt.Errorf("%w: key %q is reserved", ErrKey, key)
	case c.IsComp(key) || c.IsVar(key):
		return fmt.Errorf("%w: key %q already exists", ErrKey, key)
	case !expr.IsIdentifier(key):
		return fmt.Errorf("%w: key %q is invalid", ErrKey, key)
	}
	return nil
}

func limitSsb(ssb, lowerLimit int) int {
	if lowerLimit >= 0 {
		lowerLimit = MinSSB
	} else {
		lowerLimit = -1
	}
	return min(max(ssb, lowerLimit), MaxSSB)
}

// AddFixedTone declares a component at the frequency given by freqExpr.
// SSB -1 inherits the group default.
func (c *Config) AddFixedTone(key string, tag CompTag, freqExpr string, ssb int) error {
	if err := c.checkKeyAvailable(key); err != nil {
		return err
	}
	fe, err := expr.Parse(freqExpr)
	if err != nil {
		return err
	}
	c.userKeys = append(c.userKeys, key)
	c.userComps[key] = fixedTone(tag, fe.String(), limitSsb(ssb, -1))
	return nil
}

// AddMaxTone declares a component found by searching for the largest
// magnitude in the band centered at centerExpr with width widthExpr.
// The tag must be Signal, UserDist, or Noise.
func (c *Config) AddMaxTone(key string, tag CompTag, centerExpr, widthExpr string, ssb int) error {
	if tag != TagSignal && tag != TagUserDist && tag != TagNoise {
		return fmt.Errorf("%w: max-tone tag must be one of {Signal, UserDist, Noise}", ErrKey)
	}
	if err := c.checkKeyAvailable(key); err != nil {
		return err
	}
	ce, err := expr.Parse(centerExpr)
	if err != nil {
		return err
	}
	we, err := expr.Parse(widthExpr)
	if err != nil {
		return err
	}
	c.userKeys = append(c.userKeys, key)
	c.userComps[key] = maxTone(tag, ce.String(), we.String(), limitSsb(ssb, -1))
	return nil
}

// RemoveComp deletes a user component. Removing an absent key is a no-op.
func (c *Config) RemoveComp(key string) {
	if !c.IsComp(key) {
		return
	}
	delete(c.userComps, key)
	c.userKeys = slices.DeleteFunc(c.userKeys, func(k string) bool { return k == key })
}

func (c *Config) setExpr(name string, dst *string, raw string, disallowed ...string) error {
	e, err := expr.Parse(raw)
	if err != nil {
		return err
	}
	if e.DependsOn(disallowed...) {
		return fmt.Errorf("%w: %s may not depend on %v", ErrKey, name, disallowed)
	}
	*dst = e.String()
	return nil
}

// SetAnalysisBand sets the analysis-band center and width expressions.
func (c *Config) SetAnalysisBand(centerExpr, widthExpr string) error {
	if err := c.setExpr("ab_center", &c.abCenter, centerExpr); err != nil {
		return err
	}
	return c.setExpr("ab_width", &c.abWidth, widthExpr)
}

// SetFData sets the data-rate expression.
func (c *Config) SetFData(e string) error {
	return c.setExpr("fdata", &c.fdata, e, "fbin", "fdata", "fshift")
}

// SetFSample sets the sample-rate expression.
func (c *Config) SetFSample(e string) error {
	return c.setExpr("fsample", &c.fsample, e, "fbin", "fdata", "fs", "fshift")
}

// SetFShift sets the shift-frequency expression.
func (c *Config) SetFShift(e string) error {
	return c.setExpr("fshift", &c.fshift, e, "fshift")
}

// SetHD sets the maximum harmonic-distortion order, clamped to [1, 99].
func (c *Config) SetHD(n int) { c.hd = min(max(n, MinHD), MaxHD) }

// SetIMD sets the maximum intermodulation order, clamped to [1, 9].
func (c *Config) SetIMD(n int) { c.imd = min(max(n, MinIMD), MaxIMD) }

// SetWO sets the number of worst-other tones, clamped to [1, 9].
func (c *Config) SetWO(n int) { c.wo = min(max(n, MinWO), MaxWO) }

// SetSsb sets a single-side-bin half-width. The Default group clamps to
// [0, MaxSSB]; the DC, Signal, and WO groups admit -1 to inherit the
// default.
func (c *Config) SetSsb(group SsbGroup, ssb int) {
	switch group {
	case SsbDC:
		c.ssbDC = limitSsb(ssb, -1)
	case SsbSignal:
		c.ssbSig = limitSsb(ssb, -1)
	case SsbWO:
		c.ssbWO = limitSsb(ssb, -1)
	default:
		c.ssbDef = limitSsb(ssb, MinSSB)
	}
}

// Ssb returns the configured half-width for a group (-1 = inherit).
func (c *Config) Ssb(group SsbGroup) int {
	switch group {
	case SsbDC:
		return c.ssbDC
	case SsbSignal:
		return c.ssbSig
	case SsbWO:
		return c.ssbWO
	default:
		return c.ssbDef
	}
}

func filterSorted(values []int, lo, hi int) []int {
	var out []int
	for _, n := range values {
		if lo <= n && n <= hi && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// SetClk replaces the set of clock-divider factors; values outside
// [2, 256] are dropped.
func (c *Config) SetClk(clk []int) { c.clk = filterSorted(clk, MinClk, MaxClk) }

// SetIlv replaces the set of interleaving factors; values outside
// [2, 64] are dropped.
func (c *Config) SetIlv(ilv []int) { c.ilv = filterSorted(ilv, MinIlv, MaxIlv) }

// SetVar defines or updates a user variable. New names must be available
// keys; values must be finite.
func (c *Config) SetVar(name string, x float64) error {
	if !c.IsVar(name) {
		if err := c.checkKeyAvailable(name); err != nil {
			return err
		}
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: variable %q: non-finite value", ErrRange, name)
	}
	c.userVars[name] = x
	return nil
}

// HD returns the maximum harmonic order.
func (c *Config) HD() int { return c.hd }

// IMD returns the maximum intermodulation order.
func (c *Config) IMD() int { return c.imd }

// WO returns the number of worst-other tones.
func (c *Config) WO() int { return c.wo }

// Clk returns the clock-divider factors in increasing order.
func (c *Config) Clk() []int { return slices.Clone(c.clk) }

// Ilv returns the interleaving factors in increasing order.
func (c *Config) Ilv() []int { return slices.Clone(c.ilv) }

// ABCenter returns the analysis-band center expression.
func (c *Config) ABCenter() string { return c.abCenter }

// ABWidth returns the analysis-band width expression.
func (c *Config) ABWidth() string { return c.abWidth }

// FData returns the data-rate expression.
func (c *Config) FData() string { return c.fdata }

// FSample returns the sample-rate expression.
func (c *Config) FSample() string { return c.fsample }

// FShift returns the shift-frequency expression.
func (c *Config) FShift() string { return c.fshift }

// CompKeys returns the user component keys in declaration order.
func (c *Config) CompKeys() []string { return slices.Clone(c.userKeys) }

// Comp returns the user component declared under key.
func (c *Config) Comp(key string) (Component, bool) {
	comp, ok := c.userComps[key]
	return comp, ok
}

// Var returns the value of a user variable.
func (c *Config) Var(name string) (float64, bool) {
	v, ok := c.userVars[name]
	return v, ok
}

// Vars returns a copy of the user variable map.
func (c *Config) Vars() map[string]float64 { return maps.Clone(c.userVars) }
