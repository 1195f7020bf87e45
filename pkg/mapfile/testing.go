package mapfile

import (
	"bytes"
	"encoding/binary"
)

// Build encodes a minimal datafile with the given version and item type
// table. Items and raw data are left empty. It is used to produce fixtures.
func Build(version int32, types []ItemType) []byte {
	var numItems int32
	for _, t := range types {
		numItems += t.Num
	}

	var buf bytes.Buffer
	buf.Write(signature)
	h := Header{
		Version:      version,
		SwapLen:      int32(len(types) * itemTypeSize),
		NumItemTypes: int32(len(types)),
		NumItems:     numItems,
	}
	h.Size = int32(HeaderSize-16) + h.SwapLen
	_ = binary.Write(&buf, binary.LittleEndian, h)
	_ = binary.Write(&buf, binary.LittleEndian, types)
	return buf.Bytes()
}
