package wire

import "fmt"

// MaxNameLength is the largest name representable by the two-byte
// length prefix (15 bits).
const MaxNameLength = 0x7FFF

// extendedLengthFlag is the MSB of the first length byte, signalling that
// a second length byte follows.
const extendedLengthFlag = 0x80

// EncodeName appends name's length-prefixed, verbatim-byte encoding to
// dst and returns the extended slice. A single byte is used for names up
// to 127 bytes; names up to MaxNameLength use two bytes, the first
// carrying extendedLengthFlag plus the low 7 bits, the second carrying
// the high 8 bits.
func EncodeName(dst []byte, name string) ([]byte, error) {
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("wire: name %q exceeds max length %d", name, MaxNameLength)
	}
	n := len(name)
	if n < extendedLengthFlag {
		dst = append(dst, byte(n))
	} else {
		dst = append(dst, byte(n&0x7F)|extendedLengthFlag, byte(n>>7))
	}
	dst = append(dst, name...)
	return dst, nil
}

// DecodeName reads one length-prefixed name starting at offset within
// table and returns it along with the offset of the byte following the
// name. The second length byte, when present, is read from its actual
// position (not re-read from the first byte).
func DecodeName(table []byte, offset uint32) (string, uint32, error) {
	if int(offset) >= len(table) {
		return "", 0, fmt.Errorf("wire: name offset %d out of range", offset)
	}
	first := table[offset]
	var length int
	var headerLen uint32
	if first&extendedLengthFlag != 0 {
		if int(offset)+1 >= len(table) {
			return "", 0, fmt.Errorf("wire: truncated extended name length at offset %d", offset)
		}
		second := table[offset+1]
		length = int(first&0x7F) | int(second)<<7
		headerLen = 2
	} else {
		length = int(first)
		headerLen = 1
	}
	start := offset + headerLen
	end := uint64(start) + uint64(length)
	if end > uint64(len(table)) {
		return "", 0, fmt.Errorf("wire: name at offset %d runs past end of table", offset)
	}
	return string(table[start:end]), uint32(end), nil
}
