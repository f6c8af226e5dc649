// Package inventory implements the scarcity-driven reservation engine: fixed
// per-package capacity, TTL-bounded checkout holds and lazy reclamation of
// abandoned holds.
package inventory

// Pool holds the capacity counters of a single package.
//
// Sold + Reserved never exceeds Total in any state observable outside the
// engine's per-package lock.
type Pool struct {
	PackageID string `json:"packageId"`
	Total     uint   `json:"total"`
	Sold      uint   `json:"sold"`
	Reserved  uint   `json:"reserved"`
}

// Available returns Total - Sold - Reserved, clamped at zero.
func (p Pool) Available() uint {
	used := p.Sold + p.Reserved
	if used >= p.Total {
		return 0
	}
	return p.Total - used
}

// SoldOut reports whether every unit has been sold.
func (p Pool) SoldOut() bool {
	return p.Sold >= p.Total
}

// consistent reports whether the counting invariant holds.
func (p Pool) consistent() bool {
	return p.Sold <= p.Total && p.Sold+p.Reserved <= p.Total
}
