package partialfile

// State is the persisted progress record of a partial file. It tracks
// at most two valid intervals: a head anchored at offset zero and a
// tail that lies past the head. The first interval submitted past the
// head becomes the tail wherever it ends; the tail is anchored at the
// end of the file only once writes reach it, and HasValidTail() reports
// false until then. Writes that land strictly
// between the two are not remembered across a resume; they will simply
// be transferred again. Bounding the record to two intervals keeps its
// size fixed, which is all the head-then-tail and tail-then-head
// download patterns need.
type State struct {
	TotalSizeBytes int64      `cbor:"1,keyasint"`
	ValidHead      *ValidPart `cbor:"2,keyasint,omitempty"`
	ValidTail      *ValidPart `cbor:"3,keyasint,omitempty"`
}

// extendValidPart records that another interval of the file has been
// submitted to the device, growing the head and/or tail. When the head
// reaches the end of the file, both end up describing the full
// interval. When the head and tail meet, both end up describing their
// union.
func (s *State) extendValidPart(newPart ValidPart) {
	// Extend the head.
	if s.ValidHead != nil {
		s.ValidHead.Merge(newPart)
	} else if newPart.Start == 0 {
		head := newPart
		s.ValidHead = &head
	}
	headEnd := int64(0)
	if s.ValidHead != nil {
		headEnd = s.ValidHead.End
	}

	// Extend the tail.
	if s.ValidTail != nil {
		s.ValidTail.Merge(newPart)
	} else if newPart.Start > headEnd {
		tail := newPart
		s.ValidTail = &tail
	}

	// Does the head spread all the way to the end?
	if s.ValidHead != nil && s.ValidHead.End == s.TotalSizeBytes {
		tail := *s.ValidHead
		s.ValidTail = &tail
	}

	// Did the head meet the tail?
	if s.ValidHead != nil && s.ValidTail != nil {
		s.ValidHead.Merge(*s.ValidTail)
		s.ValidTail.Merge(*s.ValidHead)
	}
}

// HasValidHead returns whether the first sizeBytes bytes of the file
// have been submitted to the device.
func (s *State) HasValidHead(sizeBytes int64) bool {
	return s.ValidHead != nil && s.ValidHead.Start == 0 && s.ValidHead.End >= sizeBytes
}

// HasValidTail returns whether the last sizeBytes bytes of the file
// have been submitted to the device.
func (s *State) HasValidTail(sizeBytes int64) bool {
	return s.ValidTail != nil && s.ValidTail.Start <= s.TotalSizeBytes-sizeBytes && s.ValidTail.End == s.TotalSizeBytes
}

// GetPercentValid returns how much of the file is valid, as an integer
// percentage. The head and tail are only summed while they are
// distinct, so that a fully valid file reports exactly one hundred.
func (s *State) GetPercentValid() int {
	if s.TotalSizeBytes == 0 {
		return 100
	}
	var validSizeBytes int64
	if s.ValidHead != nil {
		validSizeBytes += s.ValidHead.End - s.ValidHead.Start
	}
	if s.ValidTail != nil && (s.ValidHead == nil || *s.ValidHead != *s.ValidTail) {
		validSizeBytes += s.ValidTail.End - s.ValidTail.Start
	}
	if validSizeBytes > s.TotalSizeBytes {
		validSizeBytes = s.TotalSizeBytes
	}
	return int(100 * validSizeBytes / s.TotalSizeBytes)
}
