package fourier

import (
	"fmt"
	"sort"
	"strconv"
)

// fraction is a reduced rational multiple of a variable, e.g. 3/8 of fs.
// Fractions order by denominator first: interleaving and clock terms are
// grouped by factor, not by numeric value.
type fraction struct {
	num, den int
	term     string
}

func newFraction(n, d int, varName string) fraction {
	g := gcd(n, d)
	f := fraction{num: n / g, den: d / g}
	if f.num == 1 && varName != "" {
		f.term = varName
	} else {
		f.term = strconv.Itoa(f.num) + varName
	}
	f.term += "/" + strconv.Itoa(f.den)
	return f
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func fractionLess(a, b fraction) bool {
	if a.den != b.den {
		return a.den < b.den
	}
	return a.num < b.num
}

type fractionSet map[string]fraction

func (s fractionSet) add(f fraction) { s[f.term] = f }

func (s fractionSet) contains(f fraction) bool {
	_, ok := s[f.term]
	return ok
}

func (s fractionSet) sorted() []fraction {
	out := make([]fraction, 0, len(s))
	for _, f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return fractionLess(out[i], out[j]) })
	return out
}

// compList accumulates the ordered, duplicate-free expansion.
type compList struct {
	keys  []string
	comps map[string]Component
}

func (l *compList) add(key string, c Component) error {
	if _, exists := l.comps[key]; exists {
		return fmt.Errorf("%w: duplicate component key %q", ErrKey, key)
	}
	l.keys = append(l.keys, key)
	l.comps[key] = c
	return nil
}

func negate(s string, neg bool) string {
	if neg {
		return "-(" + s + ")"
	}
	return s
}

func isEven(n int) bool { return n%2 == 0 }

func isOdd(n int) bool { return n%2 != 0 }

// GenerateComps expands the configuration into the ordered component
// list measured by the engine: DC, converter offset, interleaving offset
// and clock tones, user components with their derived harmonics, images,
// interleaving gain/timing tones and intermodulation products, and
// finally the worst-other tones. ilosClkKeys identifies ILOS tones that
// double as clock tones so their ranges also count toward the CLK mask.
func (c *Config) GenerateComps(cplx bool) (keys []string, comps map[string]Component, ilosClkKeys map[string]struct{}, err error) {
	findFI := c.EnFundImages && cplx
	findQE := c.EnQuadErrors && cplx
	list := &compList{comps: map[string]Component{}}
	ilosClkKeys = map[string]struct{}{}

	// DC and converter-offset components.
	ssb := c.ssbDC
	if ssb < 0 {
		ssb = c.ssbDef
	}
	if err := list.add("dc", dcComp(ssb)); err != nil {
		return nil, nil, nil, err
	}
	if c.EnConvOffset {
		if err := list.add("co", fixedTone(TagUserDist, "0", ssb)); err != nil {
			return nil, nil, nil, err
		}
	}

	// Interleaving-offset and clock components. An ILOS term that is also
	// a clock term keeps the ILOS tag (higher priority) and is recorded in
	// ilosClkKeys.
	ilvTerms := fractionSet{}
	clkTerms := fractionSet{}
	ilosClkTerms := fractionSet{}
	for _, x := range c.ilv {
		for i := 1; i <= x/2; i++ {
			f := newFraction(i, x, "fs")
			ilvTerms.add(f)
			ilosClkTerms.add(f)
		}
	}
	for _, x := range c.clk {
		for i := 1; i <= x/2; i++ {
			if gcd(i, x) == 1 {
				f := newFraction(i, x, "fs")
				clkTerms.add(f)
				ilosClkTerms.add(f)
			}
		}
	}
	for _, f := range ilosClkTerms.sorted() {
		key := f.term
		if ilvTerms.contains(f) {
			isAlsoClk := clkTerms.contains(f)
			if err := list.add(key, fixedTone(TagILOS, key, c.ssbDef)); err != nil {
				return nil, nil, nil, err
			}
			if isAlsoClk {
				ilosClkKeys[key] = struct{}{}
			}
			if cplx && key != "fs/2" {
				key = "-" + key
				if err := list.add(key, fixedTone(TagILOS, key, c.ssbDef)); err != nil {
					return nil, nil, nil, err
				}
				if isAlsoClk {
					ilosClkKeys[key] = struct{}{}
				}
			}
		} else {
			if err := list.add(key, fixedTone(TagCLK, key, c.ssbDef)); err != nil {
				return nil, nil, nil, err
			}
			if cplx && key != "fs/2" {
				key = "-" + key
				if err := list.add(key, fixedTone(TagCLK, key, c.ssbDef)); err != nil {
					return nil, nil, nil, err
				}
			}
		}
	}

	// User components, each Signal followed by its derived components.
	var fundKeys []string
	defSigSsb := c.ssbSig
	if defSigSsb < 0 {
		defSigSsb = c.ssbDef
	}
	for _, ukey := range c.userKeys {
		comp := c.userComps[ukey]
		defUserSsb := c.ssbDef
		if comp.Tag == TagSignal {
			defUserSsb = defSigSsb
		}
		resolved := comp
		if resolved.SSB < 0 {
			resolved.SSB = defUserSsb
		}
		if err := list.add(ukey, resolved); err != nil {
			return nil, nil, nil, err
		}
		if comp.Tag != TagSignal {
			continue
		}
		fundKeys = append(fundKeys, ukey)
		if err := c.addSignalDerived(list, ukey, fundKeys, ilvTerms, cplx, findFI, findQE); err != nil {
			return nil, nil, nil, err
		}
	}

	// Worst-other components.
	ssb = c.ssbWO
	if ssb < 0 {
		ssb = c.ssbDef
	}
	if c.wo == 1 {
		if err := list.add("wo", woTone(ssb)); err != nil {
			return nil, nil, nil, err
		}
	} else {
		for i := 1; i <= c.wo; i++ {
			if err := list.add("wo"+strconv.Itoa(i), woTone(ssb)); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return list.keys, list.comps, ilosClkKeys, nil
}

// addSignalDerived emits the image, harmonic, interleaving gain/timing,
// and intermodulation components derived from the Signal component ukey.
func (c *Config) addSignalDerived(
	list *compList,
	ukey string,
	fundKeys []string,
	ilvTerms fractionSet,
	cplx, findFI, findQE bool,
) error {
	ssb := c.ssbDef
	addFixed := func(tag CompTag, key string) error {
		return list.add(key, fixedTone(tag, key, ssb))
	}
	// Fundamental image.
	if findFI {
		if err := addFixed(TagHD, "-"+ukey); err != nil {
			return err
		}
	}
	// Harmonic distortion, orders 2..HD.
	for i := 2; i <= c.hd; i++ {
		if isEven(i) {
			key := strconv.Itoa(i) + ukey
			if err := addFixed(TagHD, key); err != nil {
				return err
			}
			if cplx {
				if err := addFixed(TagHD, "-"+key); err != nil {
					return err
				}
			}
		} else {
			// Odd orders land on alternating sides of a complex axis:
			// 3, 7, 11, ... negative; 5, 9, 13, ... positive. Real data
			// folds everything positive.
			j := i
			if cplx && isOdd(i/2) {
				j = -i
			}
			if err := addFixed(TagHD, strconv.Itoa(j)+ukey); err != nil {
				return err
			}
			if findQE {
				if err := addFixed(TagHD, strconv.Itoa(-j)+ukey); err != nil {
					return err
				}
			}
		}
	}
	// Interleaving gain/timing components.
	for _, f := range ilvTerms.sorted() {
		if err := addFixed(TagILGT, ukey+"+"+f.term); err != nil {
			return err
		}
		if f.term != "fs/2" {
			if err := addFixed(TagILGT, ukey+"-"+f.term); err != nil {
				return err
			}
		}
		if findQE {
			if err := addFixed(TagILGT, negate(ukey+"+"+f.term, true)); err != nil {
				return err
			}
			if f.term != "fs/2" {
				if err := addFixed(TagILGT, negate(ukey+"-"+f.term, true)); err != nil {
					return err
				}
			}
		}
	}
	// Intermodulation products against every earlier Signal component.
	for _, ka := range fundKeys {
		if ka == ukey {
			continue
		}
		if err := c.addIMD(list, ka, ukey, cplx, findQE, ssb); err != nil {
			return err
		}
	}
	return nil
}

// addIMD emits the order-2..IMD intermodulation products of the Signal
// pair (ka, kb). Products split into difference terms (p·kx - q·ky) and
// sum terms (p·kx + q·ky); on a complex axis each term also has a
// negated twin, gated by EnQuadErrors for the odd-order sums.
func (c *Config) addIMD(list *compList, ka, kb string, cplx, findQE bool, ssb int) error {
	addFixed := func(key string) error {
		return list.add(key, fixedTone(TagIMD, key, ssb))
	}
	coeff := func(n int) string {
		if n == 1 {
			return ""
		}
		return strconv.Itoa(n)
	}
	for order := 2; order <= c.imd; order++ {
		group := 0
		if isOdd(order) {
			group = 1
		}
		for ; group <= order; group += 2 {
			if group < order {
				// Difference terms: p·kx - q·ky.
				pp := (order + group) / 2
				qq := order - pp
				p, q := coeff(pp), coeff(qq)
				switch {
				case group == 0:
					key := p + kb + "-" + q + ka
					if err := addFixed(key); err != nil {
						return err
					}
					if cplx {
						if err := addFixed(negate(key, true)); err != nil {
							return err
						}
					}
				case isEven(order):
					for _, key := range []string{p + ka + "-" + q + kb, p + kb + "-" + q + ka} {
						if err := addFixed(key); err != nil {
							return err
						}
					}
					if cplx {
						for _, key := range []string{p + ka + "-" + q + kb, p + kb + "-" + q + ka} {
							if err := addFixed(negate(key, true)); err != nil {
								return err
							}
						}
					}
				default:
					neg := cplx && isOdd(group/2)
					for _, key := range []string{p + ka + "-" + q + kb, p + kb + "-" + q + ka} {
						if err := addFixed(negate(key, neg)); err != nil {
							return err
						}
					}
					if cplx {
						for _, key := range []string{p + ka + "-" + q + kb, p + kb + "-" + q + ka} {
							if err := addFixed(negate(key, !neg)); err != nil {
								return err
							}
						}
					}
				}
				continue
			}
			// Sum terms: p·kx + q·ky, group == order.
			if isEven(order) {
				for qq := 1; qq < group; qq++ {
					pp := order - qq
					if err := addFixed(coeff(pp) + ka + "+" + coeff(qq) + kb); err != nil {
						return err
					}
				}
				if cplx {
					for pp := 1; pp < group; pp++ {
						qq := order - pp
						if err := addFixed(negate(coeff(pp)+ka+"+"+coeff(qq)+kb, true)); err != nil {
							return err
						}
					}
				}
			} else {
				neg := cplx && isOdd(group/2)
				for qq := 1; qq < group; qq++ {
					pp := order - qq
					if err := addFixed(negate(coeff(pp)+ka+"+"+coeff(qq)+kb, neg)); err != nil {
						return err
					}
				}
				if findQE {
					for pp := 1; pp < group; pp++ {
						qq := order - pp
						if err := addFixed(negate(coeff(pp)+ka+"+"+coeff(qq)+kb, !neg)); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
