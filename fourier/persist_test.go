package fourier

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.DcAsDist = true
	cfg.EnConvOffset = true
	cfg.SetHD(9)
	cfg.SetIMD(4)
	cfg.SetWO(2)
	cfg.SetSsb(SsbDefault, 2)
	cfg.SetSsb(SsbSignal, 4)
	cfg.SetClk([]int{2, 8})
	cfg.SetIlv([]int{4})
	require.NoError(t, cfg.SetFSample("1e9"))
	require.NoError(t, cfg.SetFData("fs/4"))
	require.NoError(t, cfg.SetFShift("fs/32"))
	require.NoError(t, cfg.SetAnalysisBand("fdata/4", "fdata/2"))
	require.NoError(t, cfg.SetVar("x", 2.5))
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "fs/10+x", -1))
	require.NoError(t, cfg.AddMaxTone("M", TagUserDist, "fdata/4", "fdata/8", 3))

	var buf bytes.Buffer
	require.NoError(t, cfg.SaveTo(&buf))

	loaded, err := LoadFrom(&buf)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(loaded), "round-tripped config differs")
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	cfg := NewConfig()
	cfg.SetHD(3)
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "fs/4", -1))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(loaded))
}

func TestLoadErrors(t *testing.T) {
	load := func(doc string) error {
		_, err := LoadFrom(strings.NewReader(doc))
		return err
	}

	assert.ErrorIs(t, load("not: [valid"), ErrLoad)
	assert.ErrorIs(t, load("version: 99\nhd: 6\nimd: 3\nwo: 1\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfsample: \"1\"\nfshift: \"0\"\n"), ErrLoad)
	// Unknown fields are rejected.
	assert.ErrorIs(t, load("version: 1\nhd: 6\nimd: 3\nwo: 1\nbogus: 1\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfsample: \"1\"\nfshift: \"0\"\n"), ErrLoad)
	// Missing required expression fields are load errors.
	assert.ErrorIs(t, load("version: 1\nhd: 6\nimd: 3\nwo: 1\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfshift: \"0\"\n"), ErrLoad)
	// Out-of-range integers surface as range errors, not silent clamps.
	assert.ErrorIs(t, load("version: 1\nhd: 200\nimd: 3\nwo: 1\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfsample: \"1\"\nfshift: \"0\"\n"), ErrRange)
	assert.ErrorIs(t, load("version: 1\nhd: 6\nimd: 3\nwo: 1\nclk: [500]\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfsample: \"1\"\nfshift: \"0\"\n"), ErrRange)
}

func TestLoadBadComponent(t *testing.T) {
	base := "version: 1\nhd: 6\nimd: 3\nwo: 1\nab_center: \"0\"\nab_width: fdata\nfdata: fs\nfsample: \"1\"\nfshift: \"0\"\n"

	doc := base + "components:\n  - key: A\n    type: Nope\n    tag: Signal\n    freq: fs/4\n    ssb: 0\n"
	_, err := LoadFrom(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrLoad)

	doc = base + "components:\n  - key: A\n    type: FixedTone\n    tag: Bogus\n    freq: fs/4\n    ssb: 0\n"
	_, err = LoadFrom(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrLoad)

	// Reserved keys are rejected by the setters the loader runs through.
	doc = base + "components:\n  - key: dc\n    type: FixedTone\n    tag: Signal\n    freq: fs/4\n    ssb: 0\n"
	_, err = LoadFrom(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrKey)

	// WOTone is engine-generated, never user-declared.
	doc = base + "components:\n  - key: A\n    type: WOTone\n    tag: Noise\n    ssb: 0\n"
	_, err = LoadFrom(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestSaveDocumentShape(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "fs/4", -1))
	var buf bytes.Buffer
	require.NoError(t, cfg.SaveTo(&buf))
	doc := buf.String()
	assert.Contains(t, doc, "version: 1")
	assert.Contains(t, doc, "hd: 6")
	assert.Contains(t, doc, "ab_width: fdata")
	assert.Contains(t, doc, "key: A")
	assert.Contains(t, doc, "tag: Signal")
	assert.Contains(t, doc, "freq: fs/4")
}
