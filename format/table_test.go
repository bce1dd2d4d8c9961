package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableBasic(t *testing.T) {
	out := Table(
		[][]string{{"Name", "Value"}},
		[][]string{{"snr", "60.1"}, {"sfdr", "72"}},
		1, true, true,
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// ==== / header / ==== / 2 data rows / ====
	assert.Len(t, lines, 6)
	assert.Equal(t, "| Name | Value |", lines[1])
	assert.Equal(t, "| snr  | 60.1  |", lines[3])
	assert.Equal(t, "| sfdr | 72    |", lines[4])
	for _, i := range []int{0, 2, 5} {
		assert.Equal(t, strings.Repeat("=", len(lines[1])), lines[i])
	}
}

func TestTableNoBorderNoSep(t *testing.T) {
	out := Table(nil, [][]string{{"a", "bb"}, {"ccc", "d"}}, 0, false, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{" a   bb ", " ccc d  "}, lines)
}

func TestTableRaggedRows(t *testing.T) {
	out := Table(nil, [][]string{{"a", "b", "c"}, {"only"}}, 0, false, true)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	// Missing cells fill with blanks, widths stay aligned.
	assert.Equal(t, len(lines[0]), len(lines[1]))
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "", Table(nil, nil, 2, true, true))
}

func TestTableMarginClamp(t *testing.T) {
	narrow := Table(nil, [][]string{{"x"}}, -5, false, false)
	assert.Equal(t, " x \n", narrow)
}

func TestResultTable(t *testing.T) {
	out := ResultTable([][]string{{"sfdr", "71.9", "dB"}}, 1, true, true)
	assert.Contains(t, out, "| Name | Value | Units |")
	assert.Contains(t, out, "| sfdr | 71.9  | dB    |")
}
