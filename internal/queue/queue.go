// Package queue holds the ordered track list for a listening session.
package queue

// Track is a single playable item.
type Track struct {
	Title string
	Path  string
}

// Queue manages an ordered list of local tracks. It is only mutated
// from Bubbletea's single-threaded Update loop, so it needs no
// locking.
type Queue struct {
	tracks  []Track
	current int
}

// New creates a Queue from the given tracks.
func New(tracks []Track) *Queue {
	return &Queue{tracks: tracks}
}

// Current returns the current track, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	if q.current < 0 || q.current >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.current]
}

// Next returns the track after the current one without advancing, or
// nil at the end.
func (q *Queue) Next() *Track {
	if q.current+1 >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.current+1]
}

// Advance moves to the next track; it reports false at the end.
func (q *Queue) Advance() bool {
	if q.current+1 >= len(q.tracks) {
		return false
	}
	q.current++
	return true
}

// Previous moves to the prior track; it reports false at the start.
func (q *Queue) Previous() bool {
	if q.current <= 0 {
		return false
	}
	q.current--
	return true
}

// WrapToStart resets to the first track (repeat-all behavior).
func (q *Queue) WrapToStart() {
	q.current = 0
}

// Len returns the number of tracks.
func (q *Queue) Len() int { return len(q.tracks) }

// CurrentIndex returns the index of the current track.
func (q *Queue) CurrentIndex() int { return q.current }

// SetCurrentIndex jumps to the given track if it exists.
func (q *Queue) SetCurrentIndex(i int) {
	if i >= 0 && i < len(q.tracks) {
		q.current = i
	}
}

// Track returns the track at i, or nil when out of range.
func (q *Queue) Track(i int) *Track {
	if i < 0 || i >= len(q.tracks) {
		return nil
	}
	return &q.tracks[i]
}
