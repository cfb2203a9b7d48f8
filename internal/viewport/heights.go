package viewport

// Fallback row heights by expansion state. The expanded constant covers the
// full inline chart, which is why it dwarfs the collapsed card.
const (
	CollapsedRowHeight = 70.0
	ExpandedRowHeight  = 1330.0
)

// ExpansionSource reports whether the token at a view index is expanded.
type ExpansionSource interface {
	ExpandedAt(index int) bool
}

// ExpansionFunc adapts a plain function to ExpansionSource.
type ExpansionFunc func(index int) bool

func (f ExpansionFunc) ExpandedAt(index int) bool { return f(index) }

// HeightModel blends measured row heights with expansion-based estimates.
// Measurements are positional, keyed by view index rather than token
// identity, so the owner must clear them whenever the derived ordering or
// length changes and drop a single index when that row's expansion toggles.
type HeightModel struct {
	expansion ExpansionSource
	measured  map[int]float64
}

func NewHeightModel(expansion ExpansionSource) *HeightModel {
	return &HeightModel{
		expansion: expansion,
		measured:  make(map[int]float64),
	}
}

// HeightAt returns the measured height for the index when one exists, else
// the expansion-based estimate.
func (m *HeightModel) HeightAt(index int) float64 {
	if height, ok := m.measured[index]; ok {
		return height
	}
	if m.expansion != nil && m.expansion.ExpandedAt(index) {
		return ExpandedRowHeight
	}
	return CollapsedRowHeight
}

// Measure records an observed row height. It reports whether the stored
// value changed, so callers can skip re-measuring the scroll extent when a
// repeat observation arrives.
func (m *HeightModel) Measure(index int, height float64) bool {
	if index < 0 || height <= 0 {
		return false
	}
	if current, ok := m.measured[index]; ok && current == height {
		return false
	}
	m.measured[index] = height
	return true
}

// InvalidateIndex drops the measurement for one view index.
func (m *HeightModel) InvalidateIndex(index int) {
	delete(m.measured, index)
}

// InvalidateAll drops every measurement.
func (m *HeightModel) InvalidateAll() {
	if len(m.measured) == 0 {
		return
	}
	m.measured = make(map[int]float64)
}

// HasMeasurement reports whether the index carries an explicit measurement.
func (m *HeightModel) HasMeasurement(index int) bool {
	_, ok := m.measured[index]
	return ok
}

// MeasuredCount reports how many indexes carry measurements.
func (m *HeightModel) MeasuredCount() int {
	return len(m.measured)
}
