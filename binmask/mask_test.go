package binmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSetRangeStop(t *testing.T) {
	m := New(Stop, 16)
	require.NoError(t, m.SetRange(4, 7))
	assert.Equal(t, [][2]int{{4, 8}}, m.Ranges())
	assert.Equal(t, 4, m.Count())

	// Clamped at both edges.
	require.NoError(t, m.SetRange(-3, 1))
	require.NoError(t, m.SetRange(14, 20))
	assert.Equal(t, [][2]int{{0, 2}, {4, 8}, {14, 16}}, m.Ranges())

	// Entirely off-axis is a no-op.
	require.NoError(t, m.SetRange(30, 40))
	assert.Equal(t, 3, m.NumRanges())

	// right < left is an error.
	assert.ErrorIs(t, m.SetRange(5, 4), ErrRange)
}

func TestSetRangeWrap(t *testing.T) {
	// S5: set_range(14, 2) on N=16 stores [14,16) and [0,3).
	m := New(Wrap, 16)
	require.NoError(t, m.SetRange(14, 18)) // 18 ≡ 2 (mod 16)
	assert.Equal(t, [][2]int{{0, 3}, {14, 16}}, m.Ranges())
	assert.Equal(t, 5, m.Count())

	// Negative left translates modulo N.
	m = New(Wrap, 16)
	require.NoError(t, m.SetRange(-2, 2))
	assert.Equal(t, [][2]int{{0, 3}, {14, 16}}, m.Ranges())

	m = New(Wrap, 8)
	assert.ErrorIs(t, m.SetRange(0, 9), ErrRange)
}

func TestAdjacencyMerging(t *testing.T) {
	m := New(Stop, 100)
	require.NoError(t, m.SetRange(0, 9))
	require.NoError(t, m.SetRange(10, 19))
	assert.Equal(t, 1, m.NumRanges())
	assert.Equal(t, [][2]int{{0, 20}}, m.Ranges())

	// Overlap and containment also coalesce.
	require.NoError(t, m.SetRange(15, 30))
	require.NoError(t, m.SetRange(50, 60))
	require.NoError(t, m.SetRange(25, 55))
	assert.Equal(t, [][2]int{{0, 61}}, m.Ranges())
}

func TestInvert(t *testing.T) {
	m := New(Stop, 10)
	m.Invert()
	assert.True(t, m.Full())
	m.Invert()
	assert.True(t, m.Empty())

	require.NoError(t, m.SetRange(3, 5))
	m.Invert()
	assert.Equal(t, [][2]int{{0, 3}, {6, 10}}, m.Ranges())
}

func TestAndOrUnset(t *testing.T) {
	a := New(Stop, 20)
	b := New(Stop, 20)
	require.NoError(t, a.SetRange(0, 9))
	require.NoError(t, b.SetRange(5, 14))

	u := a.Clone()
	require.NoError(t, u.Or(b))
	assert.Equal(t, [][2]int{{0, 15}}, u.Ranges())

	i := a.Clone()
	require.NoError(t, i.And(b))
	assert.Equal(t, [][2]int{{5, 10}}, i.Ranges())

	d := a.Clone()
	require.NoError(t, d.UnsetRanges(b))
	assert.Equal(t, [][2]int{{0, 5}}, d.Ranges())

	// Self-difference clears.
	s := a.Clone()
	require.NoError(t, s.UnsetRanges(s))
	assert.True(t, s.Empty())

	other := New(Stop, 21)
	assert.ErrorIs(t, a.Or(other), ErrIncompatible)
	assert.ErrorIs(t, a.And(New(Wrap, 20)), ErrIncompatible)
}

func TestSumAndCount(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	m := New(Stop, 8)
	require.NoError(t, m.SetRange(1, 2))
	require.NoError(t, m.SetRange(6, 7))
	sum, err := m.Sum(data)
	require.NoError(t, err)
	assert.Equal(t, 2.0+3+7+8, sum)
	assert.Equal(t, 4, m.Count())

	_, err = m.Sum(data[:4])
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestFindMax(t *testing.T) {
	data := []float64{0, 1, 9, 2, 0, 5, 0, 3}
	m := New(Stop, 8)
	require.NoError(t, m.SetRange(1, 3))
	require.NoError(t, m.SetRange(5, 7))
	idx, lo, hi, err := m.FindMax(data)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)

	// Empty mask and all-zero data both report no maximum.
	empty := New(Stop, 8)
	idx, lo, hi, err = empty.FindMax(data)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Equal(t, -1, lo)
	assert.Equal(t, -1, hi)

	zero := New(Stop, 8)
	require.NoError(t, zero.SetRange(0, 7))
	idx, _, _, err = zero.FindMax(make([]float64, 8))
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestOverlaps(t *testing.T) {
	m := New(Stop, 32)
	require.NoError(t, m.SetRange(10, 19))
	assert.True(t, m.Overlaps(15, 25))
	assert.True(t, m.Overlaps(0, 10))
	assert.True(t, m.Overlaps(19, 30))
	assert.True(t, m.Overlaps(0, 31)) // straddles
	assert.False(t, m.Overlaps(0, 9))
	assert.False(t, m.Overlaps(20, 31))
}

func TestIndexes(t *testing.T) {
	m := New(Stop, 64)
	require.NoError(t, m.SetRange(10, 14))
	i1, i2, n, err := m.Indexes()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 14, 5}, []int{i1, i2, n})

	// Wrapped tone: [62, 2] on N=64.
	w := New(Wrap, 64)
	require.NoError(t, w.SetRange(62, 66))
	i1, i2, n, err = w.Indexes()
	require.NoError(t, err)
	assert.Equal(t, []int{62, 2, 5}, []int{i1, i2, n})

	bad := New(Stop, 64)
	require.NoError(t, bad.SetRange(0, 1))
	require.NoError(t, bad.SetRange(10, 11))
	_, _, _, err = bad.Indexes()
	assert.Error(t, err)
}

// Union/complement duality, idempotence, and sum consistency over random
// masks.
func TestMaskProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 64).Draw(t, "size")
		mode := Stop
		if rapid.Bool().Draw(t, "wrap") {
			mode = Wrap
		}
		m := New(mode, size)
		nRanges := rapid.IntRange(0, 6).Draw(t, "nRanges")
		for i := 0; i < nRanges; i++ {
			l := rapid.IntRange(0, size-1).Draw(t, "l")
			r := rapid.IntRange(l, size-1).Draw(t, "r")
			require.NoError(t, m.SetRange(l, r))
		}

		// m | !m == full, m & !m == empty.
		inv := m.Clone()
		inv.Invert()
		union := m.Clone()
		require.NoError(t, union.Or(inv))
		assert.True(t, union.Full() || size == 0)
		inter := m.Clone()
		require.NoError(t, inter.And(inv))
		assert.True(t, inter.Empty())

		// m | m == m.
		idem := m.Clone()
		require.NoError(t, idem.Or(m))
		assert.True(t, idem.Equal(m))

		// Count via ranges equals membership count; Sum equals the direct
		// sum over contained bins.
		data := make([]float64, size)
		for i := range data {
			data[i] = rapid.Float64Range(0, 10).Draw(t, "mag")
		}
		contains := make([]bool, size)
		for _, r := range m.Ranges() {
			for i := r[0]; i < r[1]; i++ {
				contains[i] = true
			}
		}
		var want float64
		count := 0
		for i, in := range contains {
			if in {
				want += data[i]
				count++
			}
		}
		got, err := m.Sum(data)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-9)
		assert.Equal(t, count, m.Count())

		// Invariant: boundaries strictly increasing, non-adjacent.
		prev := -1
		for _, r := range m.Ranges() {
			assert.Less(t, prev, r[0])
			assert.Less(t, r[0], r[1])
			prev = r[1]
		}
	})
}
