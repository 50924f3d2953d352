package analysis

const (
	historyCap     = 42
	thresholdFloor = 0.14
	thresholdBias  = 1.32
	gateSeconds    = 0.17
	pulseDecay     = 0.9
	pulseRelease   = 0.95
)

// Detector fires a discrete pulse when bass energy rises clearly above
// its recent average. A refractory gate keeps one transient from
// triggering twice; the pulse envelope is a hard reset to 1 on trigger
// with multiplicative decay otherwise.
type Detector struct {
	history [historyCap]float64
	head    int
	count   int
	sum     float64

	Pulse     float64
	gateUntil float64
}

// Decay applies the baseline pulse decay. Called once at the start of
// every tick, before the audio-availability branch.
func (d *Detector) Decay() {
	d.Pulse *= pulseDecay
}

// Observe pushes a bass sample into the rolling window and reports
// whether a beat fired at the given timestamp (seconds).
func (d *Detector) Observe(bass, now float64) bool {
	d.push(bass)

	avg := 0.0
	if d.count > 0 {
		avg = d.sum / float64(d.count)
	}
	threshold := avg * thresholdBias
	if threshold < thresholdFloor {
		threshold = thresholdFloor
	}

	if bass > threshold && now > d.gateUntil {
		d.Pulse = 1
		d.gateUntil = now + gateSeconds
		return true
	}
	d.Pulse *= pulseRelease
	return false
}

// push appends a sample, evicting the oldest once the window is full.
// The running sum tracks the window contents exactly.
func (d *Detector) push(v float64) {
	if d.count == historyCap {
		oldest := (d.head + historyCap - d.count) % historyCap
		d.sum -= d.history[oldest]
		d.count--
	}
	d.history[d.head] = v
	d.head = (d.head + 1) % historyCap
	d.count++
	d.sum += v
}

// HistoryLen returns the number of samples in the rolling window.
func (d *Detector) HistoryLen() int { return d.count }

// HistorySum returns the incrementally maintained window sum.
func (d *Detector) HistorySum() float64 { return d.sum }

// historyTotal recomputes the sum from the window members.
func (d *Detector) historyTotal() float64 {
	total := 0.0
	for i := 0; i < d.count; i++ {
		total += d.history[(d.head+historyCap-d.count+i)%historyCap]
	}
	return total
}
