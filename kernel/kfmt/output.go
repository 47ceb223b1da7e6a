package kfmt

import "io"

var (
	// earlyBuf buffers Printf output generated before an output sink
	// (normally the serial console) is attached.
	earlyBuf ringBuffer

	// outputSink is the io.Writer where Printf sends its output. While
	// nil, output is redirected to earlyBuf.
	outputSink io.Writer
)

// SetOutputSink attaches w as the target for Printf output and replays any
// data accumulated in the early-boot ring buffer to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuf)
	}
}

// GetOutputSink returns the io.Writer that Printf output is sent to. If no
// sink has been attached yet, the early-boot ring buffer is returned.
func GetOutputSink() io.Writer {
	if outputSink == nil {
		return &earlyBuf
	}
	return outputSink
}

// doWrite sends p to w, falling back to the early-boot buffer when no
// writer is available.
func doWrite(w io.Writer, p []byte) {
	if w == nil {
		w = &earlyBuf
	}
	w.Write(p)
}
