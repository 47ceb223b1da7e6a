package irq

// The vectorEntryNN functions are implemented in entry_amd64.s. Each one
// normalizes the stack to the Context layout (pushing a zero error code
// for the vectors where the CPU does not supply one), saves the general
// purpose registers and calls dispatchTrampoline.
// vectorEntryCommon is the shared tail of every entry stub; it saves the
// general purpose registers and calls dispatchTrampoline.
func vectorEntryCommon()

func vectorEntry0()
func vectorEntry1()
func vectorEntry2()
func vectorEntry3()
func vectorEntry4()
func vectorEntry5()
func vectorEntry6()
func vectorEntry7()
func vectorEntry8()
func vectorEntry9()
func vectorEntry10()
func vectorEntry11()
func vectorEntry12()
func vectorEntry13()
func vectorEntry14()
func vectorEntry15()
func vectorEntry16()
func vectorEntry17()
func vectorEntry18()
func vectorEntry19()
func vectorEntry20()
func vectorEntry21()
func vectorEntry22()
func vectorEntry23()
func vectorEntry24()
func vectorEntry25()
func vectorEntry26()
func vectorEntry27()
func vectorEntry28()
func vectorEntry29()
func vectorEntry30()
func vectorEntry31()
func vectorEntry32()
func vectorEntry33()
func vectorEntry34()
func vectorEntry35()
func vectorEntry36()
func vectorEntry37()
func vectorEntry38()
func vectorEntry39()
func vectorEntry40()
func vectorEntry41()
func vectorEntry42()
func vectorEntry43()
func vectorEntry44()
func vectorEntry45()
func vectorEntry46()
func vectorEntry47()

// vectorEntryDefault backs every vector above 47; it reports vector 0xff.
func vectorEntryDefault()

// vectorEntries maps vectors 0-47 to their dedicated entry stubs;
// exception vectors 0-31 and remapped hardware IRQ vectors 32-47 each get
// their own stub so the pushed vector number identifies the source.
var vectorEntries = [48]func(){
	vectorEntry0, vectorEntry1, vectorEntry2, vectorEntry3,
	vectorEntry4, vectorEntry5, vectorEntry6, vectorEntry7,
	vectorEntry8, vectorEntry9, vectorEntry10, vectorEntry11,
	vectorEntry12, vectorEntry13, vectorEntry14, vectorEntry15,
	vectorEntry16, vectorEntry17, vectorEntry18, vectorEntry19,
	vectorEntry20, vectorEntry21, vectorEntry22, vectorEntry23,
	vectorEntry24, vectorEntry25, vectorEntry26, vectorEntry27,
	vectorEntry28, vectorEntry29, vectorEntry30, vectorEntry31,
	vectorEntry32, vectorEntry33, vectorEntry34, vectorEntry35,
	vectorEntry36, vectorEntry37, vectorEntry38, vectorEntry39,
	vectorEntry40, vectorEntry41, vectorEntry42, vectorEntry43,
	vectorEntry44, vectorEntry45, vectorEntry46, vectorEntry47,
}

// dispatchTrampoline is the first Go code that runs after an interrupt.
// It must not grow the stack: the entry stubs call it on whatever stack
// was active when the interrupt fired.
//
//go:nosplit
func dispatchTrampoline(ctx *Context) {
	Dispatch(ctx)
}
