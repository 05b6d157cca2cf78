// Package realtime holds the streaming core: a bounded multichannel
// sample buffer and the scheduler that paces window processing and
// inference against a wall-clock step interval.
package realtime

import (
	"fmt"
	"sync"
)

// RingBuffer is a fixed-capacity multichannel sample store. Producers
// push channel-major batches; once the capacity is reached the oldest
// samples are evicted, so the buffer always holds the most recent data.
// There is no backpressure: bounded memory and freshness win over
// completeness. All methods are safe for concurrent use.
type RingBuffer struct {
	mu   sync.Mutex
	data [][]float64 // [channel][capacity], circular
	head int         // next write position
	size int
}

// NewRingBuffer creates a buffer for the given channel count holding up
// to capacity samples per channel.
func NewRingBuffer(channels, capacity int) (*RingBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("realtime: channel count must be > 0: %d", channels)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("realtime: capacity must be > 0: %d", capacity)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, capacity)
	}
	return &RingBuffer{data: data}, nil
}

// Channels returns the channel count fixed at construction.
func (r *RingBuffer) Channels() int {
	return len(r.data)
}

// Capacity returns the per-channel sample capacity.
func (r *RingBuffer) Capacity() int {
	return len(r.data[0])
}

// Size returns the number of samples currently buffered per channel.
func (r *RingBuffer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Push appends a channel-major batch. The batch must have exactly the
// buffer's channel count and equal-length rows; pushing more samples
// than fit evicts the oldest.
func (r *RingBuffer) Push(batch [][]float64) error {
	if len(batch) != len(r.data) {
		return fmt.Errorf("realtime: batch has %d channels, buffer has %d", len(batch), len(r.data))
	}
	n := len(batch[0])
	for ch, row := range batch {
		if len(row) != n {
			return fmt.Errorf("realtime: batch channel %d has %d samples, channel 0 has %d", ch, len(row), n)
		}
	}
	if n == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.data[0])
	// Only the trailing capacity samples of an oversized batch can
	// survive anyway.
	start := 0
	if n > capacity {
		start = n - capacity
	}

	for i := start; i < n; i++ {
		for ch := range r.data {
			r.data[ch][r.head] = batch[ch][i]
		}
		r.head = (r.head + 1) % capacity
		if r.size < capacity {
			r.size++
		}
	}
	return nil
}

// ReadLast returns a fresh channel-major copy of the n most recent
// samples in arrival order. It reports false when fewer than n samples
// are buffered or n is not positive.
func (r *RingBuffer) ReadLast(n int) ([][]float64, bool) {
	if n <= 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.size {
		return nil, false
	}

	capacity := len(r.data[0])
	start := (r.head - n + capacity) % capacity

	out := make([][]float64, len(r.data))
	for ch := range r.data {
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			row[i] = r.data[ch][(start+i)%capacity]
		}
		out[ch] = row
	}
	return out, true
}
