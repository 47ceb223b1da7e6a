// Package kfmt provides a minimal, allocation-free Printf implementation
// that can be safely used from interrupt context and before the Go runtime
// has been fully initialized.
package kfmt

import "io"

// digits contains the character set for base 8/10/16 output.
const digits = "0123456789abcdef"

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")

	// oneByte is a shared scratch buffer used to emit single characters
	// and string contents without triggering an allocation.
	oneByte = []byte{0}

	// numBuf is a shared scratch buffer for integer conversions. 32
	// characters cover a 64-bit value in any supported base plus padding.
	numBuf [32]byte
)

// Printf writes the formatted output to the active output sink. If no sink
// has been attached yet, output accumulates in the early-boot ring buffer
// and is replayed when SetOutputSink is called.
//
// The following subset of formatting verbs is supported:
//
//	%s  string or byte slice
//	%c  single byte character
//	%o  integer, base 8
//	%d  integer, base 10
//	%x  integer, base 16 (lower case)
//	%t  boolean, "true" or "false"
//
// An optional decimal width may precede the verb; %d and %s pad with
// spaces, %o and %x pad with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var argIndex int

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			emitByte(w, format[i])
			continue
		}

		// Scan the optional width.
		var width int
		for i++; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == len(format) {
			doWrite(w, errNoVerb)
			break
		}

		if format[i] == '%' {
			emitByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}
		arg := args[argIndex]
		argIndex++

		switch format[i] {
		case 'o':
			fmtInt(w, arg, 8, width)
		case 'd':
			fmtInt(w, arg, 10, width)
		case 'x':
			fmtInt(w, arg, 16, width)
		case 's':
			fmtString(w, arg, width)
		case 'c':
			fmtChar(w, arg)
		case 't':
			fmtBool(w, arg)
		default:
			doWrite(w, errNoVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

// emitByte writes a single byte to w via the shared scratch buffer.
func emitByte(w io.Writer, b byte) {
	oneByte[0] = b
	doWrite(w, oneByte)
}

// pad emits count copies of ch.
func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		emitByte(w, ch)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}
	if b {
		doWrite(w, []byte("true"))
		return
	}
	doWrite(w, []byte("false"))
}

func fmtChar(w io.Writer, v interface{}) {
	switch ch := v.(type) {
	case byte:
		emitByte(w, ch)
	case rune:
		// Only single-byte characters are supported.
		emitByte(w, byte(ch))
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		pad(w, ' ', width-len(s))
		// Converting the string to a byte slice would allocate so the
		// contents are emitted one byte at a time.
		for i := 0; i < len(s); i++ {
			emitByte(w, s[i])
		}
	case []byte:
		pad(w, ' ', width-len(s))
		doWrite(w, s)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtInt formats any built-in signed or unsigned integer type in the
// requested base. Base 10 output is space-padded while base 8 and 16
// output is zero-padded.
func fmtInt(w io.Writer, v interface{}, base, width int) {
	var (
		uval     uint64
		negative bool
	)

	switch num := v.(type) {
	case uint8:
		uval = uint64(num)
	case uint16:
		uval = uint64(num)
	case uint32:
		uval = uint64(num)
	case uint64:
		uval = num
	case uint:
		uval = uint64(num)
	case uintptr:
		uval = uint64(num)
	case int8:
		uval, negative = absToUint64(int64(num))
	case int16:
		uval, negative = absToUint64(int64(num))
	case int32:
		uval, negative = absToUint64(int64(num))
	case int64:
		uval, negative = absToUint64(num)
	case int:
		uval, negative = absToUint64(int64(num))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	// Render the digits into numBuf back to front.
	end := len(numBuf)
	pos := end
	for {
		pos--
		numBuf[pos] = digits[uval%uint64(base)]
		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}
	if negative && base == 10 {
		pos--
		numBuf[pos] = '-'
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}
	pad(w, padCh, width-(end-pos))
	doWrite(w, numBuf[pos:end])
}

func absToUint64(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}
