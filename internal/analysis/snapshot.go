package analysis

// Snapshot is one frame of the frequency spectrum: byte magnitudes
// (0–255, one per bin) plus the sample rate that produced them. It is
// valid only for the tick it was sampled on.
type Snapshot struct {
	Bins       []byte
	SampleRate int
	BinCount   int
}

// Sampler yields the latest spectrum, or reports that no audio source
// is available (uninitialized facility, paused playback).
type Sampler interface {
	Sample() (Snapshot, bool)
}

// BandEnergy holds the two normalized band scalars derived from a
// snapshot, each in 0–1.
type BandEnergy struct {
	Bass float64
	Body float64
}
