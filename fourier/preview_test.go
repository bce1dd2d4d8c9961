package fourier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	cfg := NewConfig()
	cfg.SetHD(2)
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "fs/4", -1))

	out, err := cfg.Preview(false)
	require.NoError(t, err)

	assert.Contains(t, out, "Index")
	assert.Contains(t, out, "Key")
	assert.Contains(t, out, "Spec")
	for _, key := range []string{"dc", "A", "2A", "wo"} {
		assert.Contains(t, out, "|  "+key)
	}
	assert.Contains(t, out, "FixedTone")
	assert.Contains(t, out, "F= fs/4")
	assert.Contains(t, out, "Signal")

	// One row per expanded component plus header and rules.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4+4) // 3 rules + header + 4 components
}

func TestPreviewComplexDiffersFromReal(t *testing.T) {
	cfg := NewConfig()
	cfg.SetHD(3)
	require.NoError(t, cfg.AddFixedTone("A", TagSignal, "fs/4", -1))
	realPrev, err := cfg.Preview(false)
	require.NoError(t, err)
	cplxPrev, err := cfg.Preview(true)
	require.NoError(t, err)
	assert.NotContains(t, realPrev, "-A")
	assert.Contains(t, cplxPrev, "-A")
}
