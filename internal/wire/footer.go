package wire

import (
	"encoding/binary"
	"fmt"
)

// FooterSize is the fixed on-disk size of a Footer record.
const FooterSize = 4 + 4 + 6*16 + 32 + 8

// Section identifies one of the six fixed sections a footer points to.
type Section int

const (
	SectionCompressedData Section = iota
	SectionOffsetRecords
	SectionNameTable
	SectionFileTree
	SectionMetaDirectory // reserved, always zero-sized
	SectionMetaData      // reserved, always zero-sized
)

// OffsetInfo is a (offset, size) pair locating one section within the
// archive file.
type OffsetInfo struct {
	Offset uint64
	Size   uint64
}

// Footer is the fixed trailer written at the end of every archive. It is
// always the last FooterSize bytes of the file.
type Footer struct {
	Magic         uint32
	Version       uint32
	Sections      [6]OffsetInfo
	IntegrityHash [32]byte
	TotalSize     uint64
}

// Section returns the (offset, size) pair for the given section index.
func (f *Footer) Section(s Section) OffsetInfo {
	return f.Sections[s]
}

// SetSection sets the (offset, size) pair for the given section index.
func (f *Footer) SetSection(s Section, info OffsetInfo) {
	f.Sections[s] = info
}

// Marshal encodes the footer into its fixed big-endian disk form.
func (f *Footer) Marshal() []byte {
	buf := make([]byte, FooterSize)
	off := 0
	binary.BigEndian.PutUint32(buf[off:], f.Magic)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], f.Version)
	off += 4
	for _, s := range f.Sections {
		binary.BigEndian.PutUint64(buf[off:], s.Offset)
		off += 8
		binary.BigEndian.PutUint64(buf[off:], s.Size)
		off += 8
	}
	copy(buf[off:off+32], f.IntegrityHash[:])
	off += 32
	binary.BigEndian.PutUint64(buf[off:], f.TotalSize)
	off += 8
	return buf
}

// UnmarshalFooter decodes a FooterSize-byte big-endian disk record and
// validates the magic/version pair.
func UnmarshalFooter(src []byte) (*Footer, error) {
	if len(src) != FooterSize {
		return nil, fmt.Errorf("wire: footer must be %d bytes, got %d", FooterSize, len(src))
	}
	f := &Footer{}
	off := 0
	f.Magic = binary.BigEndian.Uint32(src[off:])
	off += 4
	f.Version = binary.BigEndian.Uint32(src[off:])
	off += 4
	if f.Magic != Magic || f.Version != Version {
		return nil, fmt.Errorf("wire: not a zarchive file (magic=%#x version=%#x)", f.Magic, f.Version)
	}
	for i := range f.Sections {
		f.Sections[i].Offset = binary.BigEndian.Uint64(src[off:])
		off += 8
		f.Sections[i].Size = binary.BigEndian.Uint64(src[off:])
		off += 8
	}
	copy(f.IntegrityHash[:], src[off:off+32])
	off += 32
	f.TotalSize = binary.BigEndian.Uint64(src[off:])
	off += 8
	return f, nil
}

// MarshalZeroedHash encodes the footer with the integrity hash field
// zeroed, the form hashed while computing the running SHA-256 over the
// whole file.
func (f *Footer) MarshalZeroedHash() []byte {
	clone := *f
	clone.IntegrityHash = [32]byte{}
	return clone.Marshal()
}
