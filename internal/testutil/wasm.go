package testutil

// Hand-assembled guest modules. Each links against abi_ctx and exports
// functions in one of the shapes the wazero trampoline accepts.

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func section(id byte, content []byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

// importEntry is an import section body with one function import.
func importEntry(field string, typeIdx byte) []byte {
	b := []byte{0x01, 0x07}
	b = append(b, "abi_ctx"...)
	b = append(b, byte(len(field)))
	b = append(b, field...)
	return append(b, 0x00, typeIdx)
}

// CallModule exports answer: () -> i64, which returns field(arg) where field
// is an (i64) -> i64 import. arg must be below 64.
func CallModule(field string, arg byte) []byte {
	b := append([]byte(nil), wasmHeader...)
	b = append(b, section(0x01, []byte{0x02, 0x60, 0x01, 0x7e, 0x01, 0x7e, 0x60, 0x00, 0x01, 0x7e})...)
	b = append(b, section(0x02, importEntry(field, 0))...)
	b = append(b, section(0x03, []byte{0x01, 0x01})...)
	b = append(b, section(0x07, []byte{0x01, 0x06, 'a', 'n', 's', 'w', 'e', 'r', 0x00, 0x01})...)
	return append(b, section(0x0a, []byte{0x01, 0x06, 0x00, 0x42, arg, 0x10, 0x00, 0x0b})...)
}

// ImportOnly imports one () -> i64 function and does nothing else.
func ImportOnly(field string) []byte {
	b := append([]byte(nil), wasmHeader...)
	b = append(b, section(0x01, []byte{0x01, 0x60, 0x00, 0x01, 0x7e})...)
	return append(b, section(0x02, importEntry(field, 0))...)
}

// FirstModule exports memory, a fixed-address allocate with its matching
// deallocate, and first(self, args) -> i64 returning Dup(args[0]). The
// mutable i32 global "outstanding" counts allocations not yet released.
func FirstModule() []byte {
	b := append([]byte(nil), wasmHeader...)
	b = append(b, section(0x01, []byte{
		0x04,
		0x60, 0x01, 0x7e, 0x01, 0x7e, // Dup
		0x60, 0x02, 0x7e, 0x7e, 0x01, 0x7e, // first
		0x60, 0x01, 0x7f, 0x01, 0x7f, // allocate
		0x60, 0x02, 0x7f, 0x7f, 0x00, // deallocate
	})...)
	b = append(b, section(0x02, importEntry("Dup", 0))...)
	b = append(b, section(0x03, []byte{0x03, 0x01, 0x02, 0x03})...)
	b = append(b, section(0x05, []byte{0x01, 0x00, 0x01})...)
	// mut i32 outstanding = 0
	b = append(b, section(0x06, []byte{0x01, 0x7f, 0x01, 0x41, 0x00, 0x0b})...)
	b = append(b, section(0x07, []byte{
		0x05,
		0x05, 'f', 'i', 'r', 's', 't', 0x00, 0x01,
		0x08, 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x02,
		0x0a, 'd', 'e', 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x03,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x0b, 'o', 'u', 't', 's', 't', 'a', 'n', 'd', 'i', 'n', 'g', 0x03, 0x00,
	})...)
	return append(b, section(0x0a, []byte{
		0x03,
		// local.get 1; i64.const 32; i64.shr_u; i32.wrap_i64; i64.load; call Dup
		0x0d, 0x00, 0x20, 0x01, 0x42, 0x20, 0x88, 0xa7, 0x29, 0x03, 0x00, 0x10, 0x00, 0x0b,
		// outstanding++; i32.const 1024
		0x0c, 0x00, 0x23, 0x00, 0x41, 0x01, 0x6a, 0x24, 0x00, 0x41, 0x80, 0x08, 0x0b,
		// outstanding--
		0x09, 0x00, 0x23, 0x00, 0x41, 0x01, 0x6b, 0x24, 0x00, 0x0b,
	})...)
}
