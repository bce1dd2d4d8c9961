// Package binmask implements a set of bin ranges over a one-dimensional
// spectrum of N bins. A mask holds sorted, disjoint, half-open intervals
// and supports union, intersection, complement, summation over backing
// data, and max searches. Wrap mode gives the set modular semantics for
// complex (full-circle) spectra; Stop mode clamps at the array edges for
// real spectra.
package binmask

import (
	"errors"
	"fmt"
	"slices"
)

// Mode selects the boundary behavior of a mask.
type Mode int

const (
	// Stop clamps range inputs to [0, N).
	Stop Mode = iota
	// Wrap translates range inputs modulo N; a range may wrap past the
	// top of the axis back through bin 0.
	Wrap
)

// ErrIncompatible reports a binary operation between masks of different
// size or mode.
var ErrIncompatible = errors.New("incompatible mask")

// ErrRange reports a range input the mask cannot represent.
var ErrRange = errors.New("mask range error")

// Mask is a subset of {0, ..., N-1}. The zero value is not usable; use New.
//
// Intervals are stored as a flat, strictly increasing slice of boundaries:
// data[2k] is the inclusive start and data[2k+1] the exclusive end of the
// k-th interval. Adjacent intervals are always coalesced.
type Mask struct {
	mode Mode
	size int
	data []int
}

// New returns an empty mask of the given size.
func New(mode Mode, size int) *Mask {
	if size < 1 {
		panic("binmask: size < 1")
	}
	return &Mask{mode: mode, size: size}
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	return &Mask{mode: m.mode, size: m.size, data: slices.Clone(m.data)}
}

// Mode returns the boundary mode.
func (m *Mask) Mode() Mode { return m.mode }

// Size returns N.
func (m *Mask) Size() int { return m.size }

// NumRanges returns the number of stored intervals.
func (m *Mask) NumRanges() int { return len(m.data) / 2 }

// Ranges returns the stored half-open intervals.
func (m *Mask) Ranges() [][2]int {
	out := make([][2]int, 0, m.NumRanges())
	for i := 0; i < len(m.data); i += 2 {
		out = append(out, [2]int{m.data[i], m.data[i+1]})
	}
	return out
}

// Clear empties the mask.
func (m *Mask) Clear() { m.data = m.data[:0] }

// SetAll sets every bin.
func (m *Mask) SetAll() { m.data = append(m.data[:0], 0, m.size) }

// Full reports whether every bin is set.
func (m *Mask) Full() bool {
	return len(m.data) == 2 && m.data[0] == 0 && m.data[1] == m.size
}

// Empty reports whether no bin is set.
func (m *Mask) Empty() bool { return len(m.data) == 0 }

// SetRange sets the inclusive bin range [left, right]. In Stop mode the
// range is clamped to the axis; a range that falls entirely outside is a
// no-op. In Wrap mode left and right are translated modulo N and a range
// with right < left after translation wraps through bin 0.
func (m *Mask) SetRange(left, right int) error {
	last := m.size - 1
	if m.mode == Stop {
		if right < left {
			return fmt.Errorf("%w: right (%d) < left (%d)", ErrRange, right, left)
		}
		left = max(left, 0)
		right = min(right, last)
		if right < left {
			return nil // entirely off-axis
		}
		m.setRangeSafe(left, right)
		return nil
	}
	if right < left {
		right += m.size
		if right < left {
			return fmt.Errorf("%w: right out of range", ErrRange)
		}
	}
	if last < right-left {
		return fmt.Errorf("%w: range wider than axis", ErrRange)
	}
	if left < 0 {
		left += m.size
		if left < 0 {
			return fmt.Errorf("%w: left out of range", ErrRange)
		}
	} else if left > last {
		left -= m.size
		right -= m.size
		if left > last {
			return fmt.Errorf("%w: left out of range", ErrRange)
		}
	}
	if right > last {
		right -= m.size
		if right > last {
			return fmt.Errorf("%w: right out of range", ErrRange)
		}
	}
	if right < left {
		m.setRangeSafe(0, right)
		m.setRangeSafe(left, last)
	} else {
		m.setRangeSafe(left, right)
	}
	return nil
}

// Or unions other into m.
func (m *Mask) Or(other *Mask) error {
	if err := m.checkCompatible(other); err != nil {
		return err
	}
	if other == m {
		return nil
	}
	for i := 0; i < len(other.data); i += 2 {
		m.setRangeSafe(other.data[i], other.data[i+1]-1)
	}
	return nil
}

// And intersects m with other. De Morgan: A ∩ B = ¬(¬A ∪ ¬B).
func (m *Mask) And(other *Mask) error {
	if err := m.checkCompatible(other); err != nil {
		return err
	}
	if other == m {
		return nil
	}
	inv := other.Clone()
	inv.Invert()
	m.Invert()
	if err := m.Or(inv); err != nil {
		return err
	}
	m.Invert()
	return nil
}

// UnsetRanges removes every bin of other from m: A = A \ B = ¬(¬A ∪ B).
func (m *Mask) UnsetRanges(other *Mask) error {
	if other == m {
		m.Clear()
		return nil
	}
	if err := m.checkCompatible(other); err != nil {
		return err
	}
	m.Invert()
	if err := m.Or(other); err != nil {
		return err
	}
	m.Invert()
	return nil
}

// Invert complements the mask in place. Boundaries at 0 and N toggle on
// and off; interior boundaries are shared between the set and its
// complement.
func (m *Mask) Invert() {
	if len(m.data) == 0 {
		m.SetAll()
		return
	}
	if m.data[0] == 0 {
		m.data = m.data[1:]
	} else {
		m.data = append([]int{0}, m.data...)
	}
	if len(m.data) > 0 && m.data[len(m.data)-1] == m.size {
		m.data = m.data[:len(m.data)-1]
	} else {
		m.data = append(m.data, m.size)
	}
}

// Count returns the number of set bins.
func (m *Mask) Count() int {
	n := 0
	for i := 0; i < len(m.data); i += 2 {
		n += m.data[i+1] - m.data[i]
	}
	return n
}

// Sum returns the sum of data over the set bins.
func (m *Mask) Sum(data []float64) (float64, error) {
	if len(data) != m.size {
		return 0, fmt.Errorf("%w: data size %d, mask size %d", ErrIncompatible, len(data), m.size)
	}
	var sum float64
	for i := 0; i < len(m.data); i += 2 {
		for j := m.data[i]; j < m.data[i+1]; j++ {
			sum += data[j]
		}
	}
	return sum, nil
}

// FindMax locates the maximum of data over the set bins. It returns the
// index of the maximum and the inclusive bounds of the contiguous set
// interval containing it. If the mask is empty or all set bins are zero,
// all three results are -1.
func (m *Mask) FindMax(data []float64) (maxIndex, lower, upper int, err error) {
	if len(data) != m.size {
		return 0, 0, 0, fmt.Errorf("%w: data size %d, mask size %d", ErrIncompatible, len(data), m.size)
	}
	maxValue := 0.0
	maxIndex = -1
	maxRange := 0
	for r := 0; r < len(m.data); r += 2 {
		for i := m.data[r]; i < m.data[r+1]; i++ {
			if data[i] > maxValue {
				maxValue = data[i]
				maxIndex = i
				maxRange = r
			}
		}
	}
	if maxIndex < 0 {
		return -1, -1, -1, nil
	}
	return maxIndex, m.data[maxRange], m.data[maxRange+1] - 1, nil
}

// Overlaps reports whether the mask intersects the inclusive bin range
// [left, right].
func (m *Mask) Overlaps(left, right int) bool {
	li := m.boundaryIndex(left)
	ri := m.boundaryIndex(right)
	if li%2 == 1 || ri%2 == 1 { // either endpoint inside an interval
		return true
	}
	return li != ri // endpoints straddle one or more intervals
}

// Equal reports whether both masks have the same mode, size, and bins.
func (m *Mask) Equal(other *Mask) bool {
	return m.mode == other.mode && m.size == other.size && slices.Equal(m.data, other.data)
}

// Indexes describes a mask holding a single tone range. It returns the
// first bin, the last bin, and the bin count. A wrapped tone is reported
// with i1 > i2. Any other shape is an error.
func (m *Mask) Indexes() (i1, i2, nbins int, err error) {
	switch {
	case m.NumRanges() == 1:
		return m.data[0], m.data[1] - 1, m.data[1] - m.data[0], nil
	case m.NumRanges() == 2 && m.data[0] == 0 && m.data[3] == m.size:
		// Wrapped: [0, b) ∪ [a, N) is the single tone [a, b-1] mod N.
		return m.data[2], m.data[1] - 1, m.data[1] + m.data[3] - m.data[2], nil
	default:
		return 0, 0, 0, fmt.Errorf("%w: mask does not hold a single range", ErrRange)
	}
}

func (m *Mask) checkCompatible(other *Mask) error {
	if m.mode != other.mode || m.size != other.size {
		return fmt.Errorf("%w: mode/size mismatch", ErrIncompatible)
	}
	return nil
}

// boundaryIndex returns the number of stored boundaries <= value. An odd
// result means value lies inside an interval.
func (m *Mask) boundaryIndex(value int) int {
	i := 0
	for i < len(m.data) && m.data[i] <= value {
		i++
	}
	return i
}

// setRangeSafe merges the inclusive in-bounds range [left, right] into the
// boundary slice, coalescing overlapping and adjacent intervals.
func (m *Mask) setRangeSafe(left, right int) {
	right++ // exclusive
	if len(m.data) == 0 || m.data[len(m.data)-1] < left {
		m.data = append(m.data, left, right)
		return
	}
	li := m.boundaryIndex(left)
	ri := m.boundaryIndex(right)
	if li%2 == 0 { // left is outside any interval
		// Merge with an interval ending exactly at left (adjacency).
		if li > 0 && left == m.data[li-1] {
			li -= 2
			left = m.data[li]
		}
	} else { // left is inside an interval; extend from its start
		li--
		left = m.data[li]
	}
	if ri%2 == 1 { // right is inside an interval; extend to its end
		right = m.data[ri]
		ri++
	}
	m.data = slices.Replace(m.data, li, ri, left, right)
}
