package fourier

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// configVersion tags the persistence document format.
const configVersion = 1

type componentDoc struct {
	Key    string `yaml:"key"`
	Type   string `yaml:"type"`
	Tag    string `yaml:"tag"`
	Freq   string `yaml:"freq,omitempty"`
	Center string `yaml:"center,omitempty"`
	Width  string `yaml:"width,omitempty"`
	SSB    int    `yaml:"ssb"`
}

type configDoc struct {
	Version      int                `yaml:"version"`
	ClkAsNoise   bool               `yaml:"clk_as_noise"`
	DcAsDist     bool               `yaml:"dc_as_dist"`
	EnConvOffset bool               `yaml:"en_conv_offset"`
	EnFundImages bool               `yaml:"en_fund_images"`
	EnQuadErrors bool               `yaml:"en_quad_errors"`
	IlvAsNoise   bool               `yaml:"ilv_as_noise"`
	HD           int                `yaml:"hd"`
	IMD          int                `yaml:"imd"`
	WO           int                `yaml:"wo"`
	SsbDefault   int                `yaml:"ssb_default"`
	SsbDC        int                `yaml:"ssb_dc"`
	SsbSignal    int                `yaml:"ssb_signal"`
	SsbWO        int                `yaml:"ssb_wo"`
	ABCenter     string             `yaml:"ab_center"`
	ABWidth      string             `yaml:"ab_width"`
	FData        string             `yaml:"fdata"`
	FSample      string             `yaml:"fsample"`
	FShift       string             `yaml:"fshift"`
	Clk          []int              `yaml:"clk,omitempty"`
	Ilv          []int              `yaml:"ilv,omitempty"`
	Components   []componentDoc     `yaml:"components,omitempty"`
	Variables    map[string]float64 `yaml:"variables,omitempty"`
}

// SaveTo writes the configuration as a YAML document.
func (c *Config) SaveTo(w io.Writer) error {
	doc := configDoc{
		Version:      configVersion,
		ClkAsNoise:   c.ClkAsNoise,
		DcAsDist:     c.DcAsDist,
		EnConvOffset: c.EnConvOffset,
		EnFundImages: c.EnFundImages,
		EnQuadErrors: c.EnQuadErrors,
		IlvAsNoise:   c.IlvAsNoise,
		HD:           c.hd,
		IMD:          c.imd,
		WO:           c.wo,
		SsbDefault:   c.ssbDef,
		SsbDC:        c.ssbDC,
		SsbSignal:    c.ssbSig,
		SsbWO:        c.ssbWO,
		ABCenter:     c.abCenter,
		ABWidth:      c.abWidth,
		FData:        c.fdata,
		FSample:      c.fsample,
		FShift:       c.fshift,
		Clk:          c.Clk(),
		Ilv:          c.Ilv(),
		Variables:    c.Vars(),
	}
	for _, key := range c.userKeys {
		comp := c.userComps[key]
		doc.Components = append(doc.Components, componentDoc{
			Key:    key,
			Type:   comp.Type.String(),
			Tag:    comp.Tag.String(),
			Freq:   comp.Freq,
			Center: comp.Center,
			Width:  comp.Width,
			SSB:    comp.SSB,
		})
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.SaveTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFrom reads a configuration document and reconstructs it through
// the setters, so every validation applies. Unknown fields and unknown
// enum names are load errors; out-of-range integers are range errors.
func LoadFrom(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc configDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if doc.Version != configVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrLoad, doc.Version)
	}
	for _, f := range []struct{ name, v string }{
		{"ab_center", doc.ABCenter}, {"ab_width", doc.ABWidth},
		{"fdata", doc.FData}, {"fsample", doc.FSample}, {"fshift", doc.FShift},
	} {
		if f.v == "" {
			return nil, fmt.Errorf("%w: missing required field %q", ErrLoad, f.name)
		}
	}
	checkRange := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s %d outside [%d, %d]", ErrRange, name, v, lo, hi)
		}
		return nil
	}
	if err := checkRange("hd", doc.HD, MinHD, MaxHD); err != nil {
		return nil, err
	}
	if err := checkRange("imd", doc.IMD, MinIMD, MaxIMD); err != nil {
		return nil, err
	}
	if err := checkRange("wo", doc.WO, MinWO, MaxWO); err != nil {
		return nil, err
	}
	if err := checkRange("ssb_default", doc.SsbDefault, MinSSB, MaxSSB); err != nil {
		return nil, err
	}
	for _, g := range []struct {
		name string
		v    int
	}{{"ssb_dc", doc.SsbDC}, {"ssb_signal", doc.SsbSignal}, {"ssb_wo", doc.SsbWO}} {
		if err := checkRange(g.name, g.v, -1, MaxSSB); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Clk {
		if err := checkRange("clk", n, MinClk, MaxClk); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Ilv {
		if err := checkRange("ilv", n, MinIlv, MaxIlv); err != nil {
			return nil, err
		}
	}

	cfg := NewConfig()
	cfg.ClkAsNoise = doc.ClkAsNoise
	cfg.DcAsDist = doc.DcAsDist
	cfg.EnConvOffset = doc.EnConvOffset
	cfg.EnFundImages = doc.EnFundImages
	cfg.EnQuadErrors = doc.EnQuadErrors
	cfg.IlvAsNoise = doc.IlvAsNoise
	cfg.SetHD(doc.HD)
	cfg.SetIMD(doc.IMD)
	cfg.SetWO(doc.WO)
	cfg.SetSsb(SsbDefault, doc.SsbDefault)
	cfg.SetSsb(SsbDC, doc.SsbDC)
	cfg.SetSsb(SsbSignal, doc.SsbSignal)
	cfg.SetSsb(SsbWO, doc.SsbWO)
	if err := cfg.SetAnalysisBand(doc.ABCenter, doc.ABWidth); err != nil {
		return nil, err
	}
	if err := cfg.SetFSample(doc.FSample); err != nil {
		return nil, err
	}
	if err := cfg.SetFData(doc.FData); err != nil {
		return nil, err
	}
	if err := cfg.SetFShift(doc.FShift); err != nil {
		return nil, err
	}
	cfg.SetClk(doc.Clk)
	cfg.SetIlv(doc.Ilv)
	for name, v := range doc.Variables {
		if err := cfg.SetVar(name, v); err != nil {
			return nil, err
		}
	}
	for _, cd := range doc.Components {
		typ, err := ParseCompType(cd.Type)
		if err != nil {
			return nil, err
		}
		tag, err := ParseCompTag(cd.Tag)
		if err != nil {
			return nil, err
		}
		if err := checkRange("ssb", cd.SSB, -1, MaxSSB); err != nil {
			return nil, err
		}
		switch typ {
		case TypeFixedTone:
			err = cfg.AddFixedTone(cd.Key, tag, cd.Freq, cd.SSB)
		case TypeMaxTone:
			err = cfg.AddMaxTone(cd.Key, tag, cd.Center, cd.Width, cd.SSB)
		default:
			err = fmt.Errorf("%w: component %q: type %q is not user-declarable", ErrLoad, cd.Key, cd.Type)
		}
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Load reads a configuration from a file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFrom(f)
}
