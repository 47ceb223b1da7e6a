package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// Sink receives all writes, prefix included.
	Sink io.Writer

	// Prefix is injected at the beginning of each output line.
	Prefix []byte

	midLine bool
}

// Write writes len(p) bytes from p to the wrapped writer, emitting the
// configured prefix at the start of every line. The injected prefix bytes
// are not counted in the returned length.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written int

	for _, b := range p {
		if !w.midLine {
			if _, err := w.Sink.Write(w.Prefix); err != nil {
				return written, err
			}
			w.midLine = true
		}

		oneByte[0] = b
		n, err := w.Sink.Write(oneByte)
		written += n
		if err != nil {
			return written, err
		}

		if b == '\n' {
			w.midLine = false
		}
	}

	return written, nil
}
