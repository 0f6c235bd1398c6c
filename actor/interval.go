package actor

import "math"

// Interval is a closed range [Min, Max], the projection of a shape on an axis.
type Interval struct {
	Min float64
	Max float64
}

// Overlaps reports whether the two ranges share at least one value
func (i Interval) Overlaps(other Interval) bool {
	return !(i.Min > other.Max || other.Min > i.Max)
}

// Overlap returns the length of the shared range, 0 when disjoint
func (i Interval) Overlap(other Interval) float64 {
	if !i.Overlaps(other) {
		return 0
	}
	return math.Min(i.Max, other.Max) - math.Max(i.Min, other.Min)
}

// Contains reports whether other lies entirely within i
func (i Interval) Contains(other Interval) bool {
	return other.Min >= i.Min && other.Max <= i.Max
}

// Length returns Max - Min
func (i Interval) Length() float64 {
	return i.Max - i.Min
}
