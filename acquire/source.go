// Package acquire defines the sample acquisition contract and the
// producer side of the streaming loop: sources generate channel-major
// samples and a pump moves them into the ring buffer at the source
// rate.
package acquire

import "errors"

// ErrNotStarted is returned by Read before Start or after Stop.
var ErrNotStarted = errors.New("acquire: source not started")

// Source is the acquisition collaborator. Read returns up to n samples
// per channel; zero-length reads signal temporary unavailability, not
// end-of-stream, and callers keep polling. SampleRate and ChannelLabels
// are valid after Start.
type Source interface {
	Start() error
	Stop() error

	// Read returns channel-major samples and their POSIX timestamps,
	// both of length ≤ n (possibly 0). Timestamps are monotonic
	// non-decreasing.
	Read(n int) (data [][]float64, ts []float64, err error)

	SampleRate() float64
	ChannelLabels() []string
}
