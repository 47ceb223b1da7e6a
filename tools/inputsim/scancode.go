package main

// layout is the set-1 US layout, indexed by make scancode. It is the
// inverse of the table the keyboard driver decodes with.
var layout = [...]byte{
	0, 27, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', '\b',
	'\t', 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n',
	0, 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`',
	0, '\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0,
	'*', 0, ' ',
}

var makeCode [128]uint8

func init() {
	for code, ch := range layout {
		if ch != 0 && makeCode[ch] == 0 {
			makeCode[ch] = uint8(code)
		}
	}
}

// scancodeFor maps an input character to a make scancode, reporting
// whether a shift press must be simulated around it. Characters without
// a mapping return 0.
func scancodeFor(ch byte) (code uint8, shifted bool) {
	if ch >= 'A' && ch <= 'Z' {
		return makeCode[ch-'A'+'a'], true
	}

	// Raw-mode terminals deliver enter as CR and backspace as DEL.
	switch ch {
	case '\r':
		ch = '\n'
	case 0x7f:
		ch = '\b'
	}

	if int(ch) < len(makeCode) {
		return makeCode[ch], false
	}
	return 0, false
}
