package wasmhost

// Exports of the module built by AddGuest.
const (
	// GuestSum forwards to the imported host add.
	GuestSum = "sum"
	// GuestSumNative computes the sum with the i32.add instruction.
	GuestSumNative = "sum_native"
)

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionExport   = 0x07
	sectionCode     = 0x0a

	valI32       = 0x7f
	funcTypeForm = 0x60
	externFunc   = 0x00

	opLocalGet = 0x20
	opCall     = 0x10
	opI32Add   = 0x6a
	opEnd      = 0x0b
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// AddGuest returns the binary of a guest module that imports
// hostModule.add (i32, i32) -> i32 and re-exports it as GuestSum, next to
// GuestSumNative which adds in wasm itself.
func AddGuest(hostModule string) []byte {
	bin := append([]byte{}, wasmHeader...)

	// (type (func (param i32 i32) (result i32)))
	bin = appendSection(bin, sectionType, []byte{
		0x01, funcTypeForm, 0x02, valI32, valI32, 0x01, valI32,
	})

	// (import "<hostModule>" "add" (func (type 0)))
	imports := []byte{0x01}
	imports = appendName(imports, hostModule)
	imports = appendName(imports, HostFuncName)
	imports = append(imports, externFunc, 0x00)
	bin = appendSection(bin, sectionImport, imports)

	// two defined functions, both type 0
	bin = appendSection(bin, sectionFunction, []byte{0x02, 0x00, 0x00})

	// function index 0 is the import
	exports := []byte{0x02}
	exports = appendName(exports, GuestSum)
	exports = append(exports, externFunc, 0x01)
	exports = appendName(exports, GuestSumNative)
	exports = append(exports, externFunc, 0x02)
	bin = appendSection(bin, sectionExport, exports)

	forward := []byte{0x00, opLocalGet, 0x00, opLocalGet, 0x01, opCall, 0x00, opEnd}
	native := []byte{0x00, opLocalGet, 0x00, opLocalGet, 0x01, opI32Add, opEnd}
	code := []byte{0x02}
	code = appendULEB128(code, uint32(len(forward)))
	code = append(code, forward...)
	code = appendULEB128(code, uint32(len(native)))
	code = append(code, native...)
	bin = appendSection(bin, sectionCode, code)

	return bin
}

func appendSection(bin []byte, id byte, payload []byte) []byte {
	bin = append(bin, id)
	bin = appendULEB128(bin, uint32(len(payload)))
	return append(bin, payload...)
}

func appendName(bin []byte, name string) []byte {
	bin = appendULEB128(bin, uint32(len(name)))
	return append(bin, name...)
}

func appendULEB128(bin []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			bin = append(bin, b|0x80)
			continue
		}
		return append(bin, b)
	}
}
