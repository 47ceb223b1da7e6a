package kfmt

import "io"

// earlyBufSize defines the size of the early-boot ring buffer. It is
// selected so a full 80x25 worth of boot output survives until the serial
// sink comes up and must always be a power of 2.
const earlyBufSize = 2048

// ringBuffer is a fixed-size overwriting ring buffer. When the buffer
// fills up, the oldest data is dropped so the most recent boot output is
// always retained.
type ringBuffer struct {
	data       [earlyBufSize]byte
	start, end int
	full       bool
}

// Write appends len(p) bytes from p to the buffer, overwriting the oldest
// data on overflow. It never fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.data[rb.end] = b
		rb.end = (rb.end + 1) & (earlyBufSize - 1)
		if rb.full {
			rb.start = rb.end
		}
		if rb.end == rb.start {
			rb.full = true
		}
	}
	return len(p), nil
}

// Read copies up to len(p) buffered bytes into p, oldest first, and
// returns io.EOF once the buffer has been drained.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.start == rb.end && !rb.full {
		return 0, io.EOF
	}

	var n int
	for n < len(p) {
		p[n] = rb.data[rb.start]
		rb.start = (rb.start + 1) & (earlyBufSize - 1)
		rb.full = false
		n++
		if rb.start == rb.end {
			break
		}
	}
	return n, nil
}
