package analysis

// Band cutoffs in Hz. Bass covers the kick-drum fundamentals, body the
// broad low/mid range that tracks perceived loudness.
const (
	bassLowHz  = 30.0
	bassHighHz = 180.0
	bodyLowHz  = 0.0
	bodyHighHz = 1800.0
)

// ExtractBands reduces a spectrum snapshot to normalized bass and body
// energies. Pure function of its input.
func ExtractBands(s Snapshot) BandEnergy {
	if s.BinCount <= 0 || s.SampleRate <= 0 {
		return BandEnergy{}
	}
	hzPerBin := float64(s.SampleRate) / 2 / float64(s.BinCount)
	return BandEnergy{
		Bass: bandAverage(s.Bins, binIndex(bassLowHz, hzPerBin, s.BinCount), binIndex(bassHighHz, hzPerBin, s.BinCount)),
		Body: bandAverage(s.Bins, binIndex(bodyLowHz, hzPerBin, s.BinCount), binIndex(bodyHighHz, hzPerBin, s.BinCount)),
	}
}

func binIndex(cutoffHz, hzPerBin float64, binCount int) int {
	i := int(cutoffHz / hzPerBin)
	if i < 0 {
		i = 0
	}
	if i > binCount-1 {
		i = binCount - 1
	}
	return i
}

// bandAverage averages bins[lo:hi] scaled to 0–1. A degenerate range
// keeps a divisor of 1 so the result is simply 0.
func bandAverage(bins []byte, lo, hi int) float64 {
	if hi > len(bins) {
		hi = len(bins)
	}
	span := hi - lo
	if span < 1 {
		span = 1
	}
	sum := 0.0
	for i := lo; i < hi; i++ {
		sum += float64(bins[i]) / 255.0
	}
	return sum / float64(span)
}
