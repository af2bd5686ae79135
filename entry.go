package zipcore

import "strings"

// Method is a ZIP storage method. Only Stored and Deflated are supported; any other value is Unsupported.
type Method uint16

const (
	// Stored entries are stored raw, uncompressed.
	Stored Method = 0
	// Deflated entries are compressed with RFC 1951 DEFLATE.
	Deflated Method = 8
)

// MatchMode controls how (*Reader).GetEntry compares a requested name against entry names.
type MatchMode int

const (
	// MatchFull compares the full entry name.
	MatchFull MatchMode = iota
	// MatchBasename compares only the portion of the name after the last '/'.
	MatchBasename
)

// flagTrailingDescriptor is general-purpose bit 3, the trailing data descriptor flag. This engine rejects
// it on read and never sets it on write.
const flagTrailingDescriptor uint16 = 0x0008

// DefaultExternalAttrs is the external file attributes value this engine writes when EntryMeta.ExternalAttrs
// is left at its zero value. The constant 0x81B40000 (a regular file with mode 0664) matches what info-zip
// and its descendants have written for decades; there is no derivation from the actual source file.
const DefaultExternalAttrs uint32 = 0x81B40000

// EntryMeta is the union of fields required to describe one ZIP entry, shared by both the local header and
// its central-directory twin.
type EntryMeta struct {
	Name    string
	Comment string
	Extra   []byte

	Method            Method
	CompressionLevel  int
	UncompressedSize  uint32
	CompressedSize    uint32
	CRC32             uint32
	DOSTime           uint32
	LocalHeaderOffset uint32
	Flags             uint16
	VersionNeeded     uint16
	ExternalAttrs     uint32

	// dataOffset is the virtual offset of the first compressed byte as observed while reading the
	// entry's actual local header, whose extra field may differ in length from the central directory's.
	// Zero means "not recorded"; a real local header is at least 30 bytes so 0 is never a valid value.
	dataOffset uint32
}

// IsDirectory reports whether the entry's name ends with a forward slash, marking it as a directory entry
// whose payload size MUST be zero.
func (m EntryMeta) IsDirectory() bool {
	return strings.HasSuffix(m.Name, "/")
}

// EntryDataOffset returns the virtual offset of the entry's first compressed byte. For entries produced
// by a Reader this is the position recorded right after the entry's actual local header; otherwise it is
// derived from the local header offset plus the fixed local-header size and the variable name/extra
// fields.
func (m EntryMeta) EntryDataOffset() uint32 {
	if m.dataOffset != 0 {
		return m.dataOffset
	}
	return m.LocalHeaderOffset + localHeaderFixedSize + uint32(len(m.Name)) + uint32(len(m.Extra))
}

// versionNeededFor returns the version-needed-to-extract value for the given method: 20 for DEFLATED, 10
// otherwise.
func versionNeededFor(method Method) uint16 {
	if method == Deflated {
		return 20
	}
	return 10
}
