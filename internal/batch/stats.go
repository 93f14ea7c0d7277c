package batch

// Stats summarizes a population run.
type Stats struct {
	// Decoded is the number of blocks decoded into instances.
	Decoded int

	// Opaque is the number of blocks kept as raw bytes.
	Opaque int

	// Instances is the total number of decoded root instances.
	Instances int

	// DecodedBytes is the sum of body lengths of decoded blocks.
	DecodedBytes uint64
}

// add accumulates one result into the stats.
func (s *Stats) add(r *Result) {
	if r.Opaque() {
		s.Opaque++
		return
	}
	s.Decoded++
	s.Instances += len(r.Instances)
	s.DecodedBytes += uint64(len(r.Block.Body))
}
