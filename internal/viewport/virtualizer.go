package viewport

import (
	"sort"

	"tokenScope/internal/model"
)

// HeightSource yields the display height of a view index.
type HeightSource interface {
	HeightAt(index int) float64
}

// DefaultOverscan is how many rows are materialized beyond each edge of the
// visible range so small scrolls land on already-built rows.
const DefaultOverscan = 5

// Virtualizer maps the derived row sequence onto scroll space. It keeps a
// prefix-sum offset table so window and offset queries are binary searches
// over row tops instead of per-query height walks.
type Virtualizer struct {
	heights  HeightSource
	overscan int
	length   int
	offsets  []float64 // offsets[i] is the top of row i; offsets[length] is the total extent
}

func NewVirtualizer(heights HeightSource, overscan int) *Virtualizer {
	if overscan < 0 {
		overscan = DefaultOverscan
	}
	v := &Virtualizer{
		heights:  heights,
		overscan: overscan,
	}
	v.Remeasure()
	return v
}

// SetLength resizes the virtualizer to n rows and rebuilds the offset table.
func (v *Virtualizer) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	v.length = n
	v.Remeasure()
}

func (v *Virtualizer) Length() int { return v.length }

// Remeasure rebuilds the offset table in place from the height source. Call
// it after any height change: a new measurement, an expansion toggle, or a
// wholesale invalidation.
func (v *Virtualizer) Remeasure() {
	if cap(v.offsets) < v.length+1 {
		v.offsets = make([]float64, v.length+1)
	} else {
		v.offsets = v.offsets[:v.length+1]
	}
	v.offsets[0] = 0
	for i := 0; i < v.length; i++ {
		v.offsets[i+1] = v.offsets[i] + v.heights.HeightAt(i)
	}
}

// TotalHeight is the summed extent of every row.
func (v *Virtualizer) TotalHeight() float64 {
	return v.offsets[v.length]
}

// OffsetOf returns the top of the row at index, clamped into range.
func (v *Virtualizer) OffsetOf(index int) float64 {
	if index < 0 {
		return 0
	}
	if index >= v.length {
		return v.offsets[v.length]
	}
	return v.offsets[index]
}

// HeightOf returns the extent of the row at index as the offset table sees
// it.
func (v *Virtualizer) HeightOf(index int) float64 {
	if index < 0 || index >= v.length {
		return 0
	}
	return v.offsets[index+1] - v.offsets[index]
}

// Window returns the half-open index range [start, end) to materialize for
// the given scroll offset and viewport height, overscan included.
func (v *Virtualizer) Window(scrollOffset, viewportHeight float64) (int, int) {
	if v.length == 0 {
		return 0, 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	first := sort.Search(v.length, func(i int) bool {
		return v.offsets[i+1] > scrollOffset
	})
	last := sort.Search(v.length, func(i int) bool {
		return v.offsets[i] >= scrollOffset+viewportHeight
	})
	start := first - v.overscan
	if start < 0 {
		start = 0
	}
	end := last + v.overscan
	if end > v.length {
		end = v.length
	}
	if start > end {
		start = end
	}
	return start, end
}

// ClampOffset bounds a scroll offset to the valid range for the viewport.
func (v *Virtualizer) ClampOffset(offset, viewportHeight float64) float64 {
	max := v.TotalHeight() - viewportHeight
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// ScrollToIndex computes the scroll offset that places the row at index
// according to the alignment: its top at the viewport top, its middle at the
// viewport middle, or its bottom at the viewport bottom. The result is
// clamped to the scrollable range.
func (v *Virtualizer) ScrollToIndex(index int, align model.Align, viewportHeight float64) float64 {
	if v.length == 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index >= v.length {
		index = v.length - 1
	}
	top := v.offsets[index]
	height := v.offsets[index+1] - v.offsets[index]
	var target float64
	switch align {
	case model.AlignCenter:
		target = top - (viewportHeight-height)/2
	case model.AlignEnd:
		target = top - viewportHeight + height
	default:
		target = top
	}
	return v.ClampOffset(target, viewportHeight)
}
