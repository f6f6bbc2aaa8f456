package wasmmem

import "encoding/binary"

const (
	sectionMemory = 5
	sectionExport = 7

	limitsHasMax = 0x01
	externMemory = 0x02

	memoryExport = "memory"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// memoryModule encodes a module that defines one memory with the given
// limits and exports it as "memory".
func memoryModule(minPages, maxPages uint32) []byte {
	var mem []byte
	mem = binary.AppendUvarint(mem, 1)
	mem = append(mem, limitsHasMax)
	mem = binary.AppendUvarint(mem, uint64(minPages))
	mem = binary.AppendUvarint(mem, uint64(maxPages))

	var exp []byte
	exp = binary.AppendUvarint(exp, 1)
	exp = binary.AppendUvarint(exp, uint64(len(memoryExport)))
	exp = append(exp, memoryExport...)
	exp = append(exp, externMemory)
	exp = binary.AppendUvarint(exp, 0)

	out := append([]byte(nil), header...)
	out = writeSection(out, sectionMemory, mem)
	out = writeSection(out, sectionExport, exp)
	return out
}

func writeSection(out []byte, id byte, data []byte) []byte {
	out = append(out, id)
	out = binary.AppendUvarint(out, uint64(len(data)))
	return append(out, data...)
}
