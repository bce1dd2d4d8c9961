package fourier

import "fmt"

// Component is one entry of the expanded analysis specification. It is a
// tagged value: Type selects which fields are meaningful. Freq applies to
// FixedTone; Center and Width apply to MaxTone.
//
// SSB is the single-side-bin half-width of the measured range (full width
// 1 + 2·SSB bins). -1 means "inherit the group default" and is resolved
// during component generation.
type Component struct {
	Type   CompType
	Tag    CompTag
	Freq   string
	Center string
	Width  string
	SSB    int
}

func dcComp(ssb int) Component {
	return Component{Type: TypeDC, Tag: TagDC, SSB: ssb}
}

func fixedTone(tag CompTag, freq string, ssb int) Component {
	return Component{Type: TypeFixedTone, Tag: tag, Freq: freq, SSB: ssb}
}

func maxTone(tag CompTag, center, width string, ssb int) Component {
	return Component{Type: TypeMaxTone, Tag: tag, Center: center, Width: width, SSB: ssb}
}

func woTone(ssb int) Component {
	return Component{Type: TypeWOTone, Tag: TagNoise, SSB: ssb}
}

// Spec returns the textual parameter summary shown in previews.
func (c Component) Spec() string {
	switch c.Type {
	case TypeFixedTone:
		return fmt.Sprintf("F= %s , SSB= %d", c.Freq, c.SSB)
	case TypeMaxTone:
		return fmt.Sprintf("C= %s , W= %s , SSB= %d", c.Center, c.Width, c.SSB)
	default:
		return fmt.Sprintf("SSB= %d", c.SSB)
	}
}

// Equal reports whether both components have the same type, tag, and
// parameters.
func (c Component) Equal(o Component) bool { return c == o }
