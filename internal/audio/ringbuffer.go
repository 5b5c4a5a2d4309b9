package audio

import "sync"

// ringBuffer is a thread-safe circular sample history.
type ringBuffer struct {
	buf     []float64
	size    int
	w       int    // write position
	len     int    // current fill level
	written uint64 // total samples ever written
	mu      sync.Mutex
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		buf:  make([]float64, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest when full.
func (rb *ringBuffer) Write(p []float64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) > rb.size {
		p = p[len(p)-rb.size:]
	}
	for _, v := range p {
		rb.buf[rb.w] = v
		rb.w = (rb.w + 1) % rb.size
	}
	rb.len += len(p)
	if rb.len > rb.size {
		rb.len = rb.size
	}
	rb.written += uint64(len(p))
}

// Latest copies the len(dst) most recent samples into dst in chronological
// order, zero-filling the front when fewer have been written. It returns the
// total write count so callers can detect new data.
func (rb *ringBuffer) Latest(dst []float64) uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(dst)
	if n > rb.size {
		clear(dst[:n-rb.size])
		dst = dst[n-rb.size:]
		n = rb.size
	}
	have := min(n, rb.len)
	clear(dst[:n-have])
	start := (rb.w - have + rb.size) % rb.size
	for i := range have {
		dst[n-have+i] = rb.buf[(start+i)%rb.size]
	}
	return rb.written
}
