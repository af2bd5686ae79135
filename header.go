package zipcore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	sigLocalFileHeader       uint32 = 0x04034b50
	sigCentralDirectoryFile  uint32 = 0x02014b50
	sigEndOfCentralDirectory uint32 = 0x06054b50
)

const (
	localHeaderFixedSize uint32 = 30
	cdHeaderFixedSize    uint32 = 46
	eocdFixedSize        uint32 = 22
)

const (
	maxUint16 = 0xFFFF
	maxUint32 = 0xFFFFFFFF
)

// fixedSizeLocalHeader is the 30-byte fixed portion of a local file header, laid out for binary.Read /
// binary.Write.
type fixedSizeLocalHeader struct {
	Signature        uint32
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileNameLength   uint16
	ExtraFieldLength uint16
}

// fixedSizeCDHeader is the 46-byte fixed portion of a central-directory file header.
type fixedSizeCDHeader struct {
	Signature         uint32
	CreatorVersion    uint16
	VersionNeeded     uint16
	Flags             uint16
	Method            uint16
	ModTime           uint16
	ModDate           uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FileNameLength    uint16
	ExtraFieldLength  uint16
	FileCommentLength uint16
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
}

// fixedSizeEOCD is the 22-byte fixed portion of an end-of-central-directory record.
type fixedSizeEOCD struct {
	Signature        uint32
	DiskNumber       uint16
	CDDiskNumber     uint16
	EntriesThisDisk  uint16
	TotalEntries     uint16
	CDSize           uint32
	CDOffset         uint32
	CommentLength    uint16
}

// EOCDRecord is the decoded end-of-central-directory record.
type EOCDRecord struct {
	EntryCount int
	CDOffset   uint32
	CDSize     uint32
	Comment    string
}

// errEOCDInsufficientBuffer and errEOCDFalsePositive are internal sentinels used by the backward scan in
// reader.go to decide whether to keep searching (retryable) as opposed to a structural violation that must
// be propagated (Unsupported).
var (
	errEOCDInsufficientBuffer = errors.New("zipcore: insufficient buffer for EOCD")
	errEOCDFalsePositive      = errors.New("zipcore: EOCD signature false positive")
)

// ReadLocalHeader reads one local file header from the current position of r.
func ReadLocalHeader(r io.Reader) (EntryMeta, error) {
	var fh fixedSizeLocalHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return EntryMeta{}, newErr(IO, "read local header failed", err)
	}
	if fh.Signature != sigLocalFileHeader {
		return EntryMeta{}, newErr(IO, "invalid local header signature", nil)
	}
	if err := checkSupportedHeader(fh.Flags, fh.VersionNeeded, Method(fh.Method)); err != nil {
		return EntryMeta{}, err
	}

	name := make([]byte, fh.FileNameLength)
	if _, err := io.ReadFull(r, name); err != nil {
		return EntryMeta{}, newErr(IO, "read local header name failed", err)
	}
	extra := make([]byte, fh.ExtraFieldLength)
	if _, err := io.ReadFull(r, extra); err != nil {
		return EntryMeta{}, newErr(IO, "read local header extra failed", err)
	}

	return EntryMeta{
		Name:             string(name),
		Extra:            extra,
		Method:           Method(fh.Method),
		UncompressedSize: fh.UncompressedSize,
		CompressedSize:   fh.CompressedSize,
		CRC32:            fh.CRC32,
		DOSTime:          uint32(fh.ModDate)<<16 | uint32(fh.ModTime),
		Flags:            fh.Flags,
		VersionNeeded:    fh.VersionNeeded,
	}, nil
}

// ReadCentralDirectoryHeader reads one central-directory file header from the current position of r.
func ReadCentralDirectoryHeader(r io.Reader) (EntryMeta, error) {
	var fh fixedSizeCDHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return EntryMeta{}, newErr(IO, "read central directory header failed", err)
	}
	if fh.Signature != sigCentralDirectoryFile {
		return EntryMeta{}, newErr(IO, "invalid central directory header signature", nil)
	}
	if err := checkSupportedHeader(fh.Flags, fh.VersionNeeded, Method(fh.Method)); err != nil {
		return EntryMeta{}, err
	}

	nmk := make([]byte, int(fh.FileNameLength)+int(fh.ExtraFieldLength)+int(fh.FileCommentLength))
	if _, err := io.ReadFull(r, nmk); err != nil {
		return EntryMeta{}, newErr(IO, "read central directory variable fields failed", err)
	}
	n, m := fh.FileNameLength, fh.ExtraFieldLength

	return EntryMeta{
		Name:              string(nmk[:n]),
		Extra:             nmk[n : n+m],
		Comment:           string(nmk[n+m:]),
		Method:            Method(fh.Method),
		UncompressedSize:  fh.UncompressedSize,
		CompressedSize:    fh.CompressedSize,
		CRC32:             fh.CRC32,
		DOSTime:           uint32(fh.ModDate)<<16 | uint32(fh.ModTime),
		Flags:             fh.Flags,
		VersionNeeded:     fh.VersionNeeded,
		LocalHeaderOffset: fh.LocalHeaderOffset,
		ExternalAttrs:     fh.ExternalAttrs,
	}, nil
}

// checkSupportedHeader rejects encrypted entries, trailing data descriptors and any version/method outside
// this engine's scope.
func checkSupportedHeader(flags, versionNeeded uint16, method Method) error {
	if flags&0x0001 != 0 {
		return newErr(Unsupported, "encrypted entry", nil)
	}
	if flags&flagTrailingDescriptor != 0 {
		return newErr(Unsupported, "trailing data descriptor", nil)
	}
	if versionNeeded > 20 {
		return newErr(Unsupported, "version needed to extract exceeds 20", nil)
	}
	if method != Stored && method != Deflated {
		return newErr(Unsupported, "storage method not STORED or DEFLATED", nil)
	}
	return nil
}

// ReadEOCD attempts to parse an end-of-central-directory record out of buf starting at index pos.
//
// It returns errEOCDInsufficientBuffer if buf is too short at pos to hold a fixed EOCD, and
// errEOCDFalsePositive if the comment length implied by the record would run past the end of buf; both
// signal the caller (the backward scanner) to keep searching. A structurally complete record that claims a
// spanned archive is a real, propagated Unsupported error, not a retry signal.
func ReadEOCD(buf []byte, pos int) (EOCDRecord, error) {
	if len(buf)-pos < int(eocdFixedSize) {
		return EOCDRecord{}, errEOCDInsufficientBuffer
	}

	var fh fixedSizeEOCD
	if err := binary.Read(bytes.NewReader(buf[pos:pos+int(eocdFixedSize)]), binary.LittleEndian, &fh); err != nil {
		return EOCDRecord{}, errEOCDInsufficientBuffer
	}
	if fh.Signature != sigEndOfCentralDirectory {
		return EOCDRecord{}, errEOCDFalsePositive
	}

	commentStart := pos + int(eocdFixedSize)
	commentEnd := commentStart + int(fh.CommentLength)
	if commentEnd > len(buf) {
		return EOCDRecord{}, errEOCDFalsePositive
	}

	if fh.DiskNumber != 0 || fh.CDDiskNumber != 0 || fh.EntriesThisDisk != fh.TotalEntries {
		return EOCDRecord{}, newErr(Unsupported, "spanned archive", nil)
	}

	return EOCDRecord{
		EntryCount: int(fh.TotalEntries),
		CDOffset:   fh.CDOffset,
		CDSize:     fh.CDSize,
		Comment:    string(buf[commentStart:commentEnd]),
	}, nil
}

// HeadersEqual reports whether a local header agrees with its central-directory twin on the fields that
// must match exactly: version needed to extract, flags, method, DOS time, and filename. CRC, sizes, and
// the extra field are excluded; real archives routinely differ on those.
func HeadersEqual(local, central EntryMeta) bool {
	return local.VersionNeeded == central.VersionNeeded &&
		local.Flags == central.Flags &&
		local.Method == central.Method &&
		local.DOSTime == central.DOSTime &&
		local.Name == central.Name
}

// WriteLocalHeader writes meta's local file header to w.
func WriteLocalHeader(w io.Writer, meta EntryMeta) error {
	if err := checkFieldWidths(meta, false); err != nil {
		return err
	}

	fh := fixedSizeLocalHeader{
		Signature:        sigLocalFileHeader,
		VersionNeeded:    meta.VersionNeeded,
		Flags:            meta.Flags &^ flagTrailingDescriptor,
		Method:           uint16(meta.Method),
		ModTime:          uint16(meta.DOSTime),
		ModDate:          uint16(meta.DOSTime >> 16),
		CRC32:            meta.CRC32,
		CompressedSize:   meta.CompressedSize,
		UncompressedSize: meta.UncompressedSize,
		FileNameLength:   uint16(len(meta.Name)),
		ExtraFieldLength: uint16(len(meta.Extra)),
	}
	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return newErr(IO, "write local header failed", err)
	}
	if _, err := w.Write([]byte(meta.Name)); err != nil {
		return newErr(IO, "write local header name failed", err)
	}
	if _, err := w.Write(meta.Extra); err != nil {
		return newErr(IO, "write local header extra failed", err)
	}
	return nil
}

// WriteCentralDirectoryHeader writes meta's central-directory file header to w.
func WriteCentralDirectoryHeader(w io.Writer, meta EntryMeta) error {
	if err := checkFieldWidths(meta, true); err != nil {
		return err
	}

	externalAttrs := meta.ExternalAttrs
	if externalAttrs == 0 {
		externalAttrs = DefaultExternalAttrs
	}

	fh := fixedSizeCDHeader{
		Signature:         sigCentralDirectoryFile,
		CreatorVersion:    meta.VersionNeeded,
		VersionNeeded:     meta.VersionNeeded,
		Flags:             meta.Flags &^ flagTrailingDescriptor,
		Method:            uint16(meta.Method),
		ModTime:           uint16(meta.DOSTime),
		ModDate:           uint16(meta.DOSTime >> 16),
		CRC32:             meta.CRC32,
		CompressedSize:    meta.CompressedSize,
		UncompressedSize:  meta.UncompressedSize,
		FileNameLength:    uint16(len(meta.Name)),
		ExtraFieldLength:  uint16(len(meta.Extra)),
		FileCommentLength: uint16(len(meta.Comment)),
		ExternalAttrs:     externalAttrs,
		LocalHeaderOffset: meta.LocalHeaderOffset,
	}
	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return newErr(IO, "write central directory header failed", err)
	}
	if _, err := w.Write([]byte(meta.Name)); err != nil {
		return newErr(IO, "write central directory name failed", err)
	}
	if _, err := w.Write(meta.Extra); err != nil {
		return newErr(IO, "write central directory extra failed", err)
	}
	if _, err := w.Write([]byte(meta.Comment)); err != nil {
		return newErr(IO, "write central directory comment failed", err)
	}
	return nil
}

// WriteEOCD writes the end-of-central-directory record to w.
func WriteEOCD(w io.Writer, cdOffset, cdSize uint32, entryCount int, comment string) error {
	if entryCount > maxUint16 {
		return newErr(TooLarge, "too many entries for EOCD", nil)
	}
	if len(comment) > maxUint16 {
		return newErr(TooLarge, "archive comment too long", nil)
	}

	fh := fixedSizeEOCD{
		Signature:       sigEndOfCentralDirectory,
		EntriesThisDisk: uint16(entryCount),
		TotalEntries:    uint16(entryCount),
		CDSize:          cdSize,
		CDOffset:        cdOffset,
		CommentLength:   uint16(len(comment)),
	}
	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return newErr(IO, "write EOCD failed", err)
	}
	if _, err := w.Write([]byte(comment)); err != nil {
		return newErr(IO, "write EOCD comment failed", err)
	}
	return nil
}

// checkFieldWidths validates that every variable-length field of meta fits the on-disk width it will be
// written with, returning TooLarge otherwise. includeComment is true for the central-directory header,
// which also carries a comment field.
func checkFieldWidths(meta EntryMeta, includeComment bool) error {
	if len(meta.Name) > maxUint16 {
		return newErr(TooLarge, "entry name too long", nil)
	}
	if len(meta.Extra) > maxUint16 {
		return newErr(TooLarge, "entry extra field too long", nil)
	}
	if includeComment && len(meta.Comment) > maxUint16 {
		return newErr(TooLarge, "entry comment too long", nil)
	}
	return nil
}
