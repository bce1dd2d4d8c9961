package fourier

import "fmt"

// CompTag classifies the energy a component accounts for.
type CompTag int

const (
	TagDC       CompTag = iota // DC component (always bin 0)
	TagSignal                  // signal component
	TagHD                      // harmonic distortion
	TagIMD                     // intermodulation distortion
	TagILOS                    // interleaving offset component
	TagILGT                    // interleaving gain/timing/BW component
	TagCLK                     // clock component
	TagUserDist                // user-designated distortion
	TagNoise                   // noise component (e.g. worst other)

	numCompTags = int(TagNoise) + 1
)

var compTagNames = [...]string{"DC", "Signal", "HD", "IMD", "ILOS", "ILGT", "CLK", "UserDist", "Noise"}

func (t CompTag) String() string {
	if t < 0 || int(t) >= len(compTagNames) {
		return fmt.Sprintf("CompTag(%d)", int(t))
	}
	return compTagNames[t]
}

// ParseCompTag resolves a tag by its String form.
func ParseCompTag(s string) (CompTag, error) {
	for i, name := range compTagNames {
		if name == s {
			return CompTag(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown component tag %q", ErrLoad, s)
}

// CompType identifies the measurement strategy of a component.
type CompType int

const (
	TypeDC        CompType = iota // fixed at bin 0
	TypeFixedTone                 // tone with a fixed, user-defined location
	TypeMaxTone                   // next largest tone in a search band
	TypeWOTone                    // worst other tone
)

var compTypeNames = [...]string{"DC", "FixedTone", "MaxTone", "WOTone"}

func (t CompType) String() string {
	if t < 0 || int(t) >= len(compTypeNames) {
		return fmt.Sprintf("CompType(%d)", int(t))
	}
	return compTypeNames[t]
}

// ParseCompType resolves a type by its String form.
func ParseCompType(s string) (CompType, error) {
	for i, name := range compTypeNames {
		if name == s {
			return CompType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown component type %q", ErrLoad, s)
}

// SsbGroup selects which single-side-bin default a setter addresses.
type SsbGroup int

const (
	SsbDefault SsbGroup = iota // applies to auto-generated components
	SsbDC                      // SSB for the DC component
	SsbSignal                  // SSB for Signal components
	SsbWO                      // SSB for worst-other components
)

// AxisType governs aliasing of final frequencies and analysis-band
// construction.
type AxisType int

const (
	AxisDcCenter AxisType = iota // complex spectrum, DC in the center
	AxisDcLeft                   // complex spectrum, DC at the left edge
	AxisReal                     // real spectrum over [0, fs/2]
)

// FreqAxisFormat selects the units used to annotate frequency axes.
type FreqAxisFormat int

const (
	FreqAxisBins FreqAxisFormat = iota
	FreqAxisFreq
	FreqAxisNorm
)

// CodeFormat describes converter output coding. The engine itself never
// interprets codes; the enum is part of the public surface for callers
// that quantize waveforms upstream.
type CodeFormat int

const (
	OffsetBinary CodeFormat = iota
	TwosComplement
)

// Window identifies the window applied before the FFT that produced the
// spectrum under analysis.
type Window int

const (
	WindowBlackmanHarris Window = iota
	WindowHann
	WindowNone
)
