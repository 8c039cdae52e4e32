package partialfile

// ValidPart is a half-open byte interval [Start, End) of a partial
// file whose contents have been submitted to the storage device.
type ValidPart struct {
	Start int64 `cbor:"1,keyasint"`
	End   int64 `cbor:"2,keyasint"`
}

// Merge extends the interval to the union with another one, provided
// the two touch or overlap. Merging a disjoint interval leaves the
// receiver unchanged.
func (p *ValidPart) Merge(other ValidPart) {
	if max(p.Start, other.Start) <= min(p.End, other.End) {
		p.Start = min(p.Start, other.Start)
		p.End = max(p.End, other.End)
	}
}
