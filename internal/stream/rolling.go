// Package stream holds the bounded buffers that stream views project into.
package stream

// TrafficWindow is the number of traffic samples kept for the sparkline.
const TrafficWindow = 60

// Rolling is a fixed-size FIFO of float samples. It starts full of zeros so
// a chart drawn from it always has the same width.
type Rolling struct {
	vals []float64
	head int // index of the oldest sample
}

// NewRolling returns a buffer of n zeros. n < 1 is treated as 1.
func NewRolling(n int) *Rolling {
	if n < 1 {
		n = 1
	}
	return &Rolling{vals: make([]float64, n)}
}

// Push appends v and drops the oldest sample.
func (r *Rolling) Push(v float64) {
	r.vals[r.head] = v
	r.head = (r.head + 1) % len(r.vals)
}

// Len returns the fixed capacity.
func (r *Rolling) Len() int { return len(r.vals) }

// Values returns the samples oldest first.
func (r *Rolling) Values() []float64 {
	out := make([]float64, 0, len(r.vals))
	out = append(out, r.vals[r.head:]...)
	out = append(out, r.vals[:r.head]...)
	return out
}

// Last returns the most recent sample.
func (r *Rolling) Last() float64 {
	return r.vals[(r.head-1+len(r.vals))%len(r.vals)]
}

// Max returns the largest sample in the window.
func (r *Rolling) Max() float64 {
	m := r.vals[0]
	for _, v := range r.vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
