package zipcore

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHeader_WriteReadRoundTrip(t *testing.T) {
	meta := EntryMeta{
		Name:             "hello.txt",
		Extra:            []byte{0x01, 0x02},
		Method:           Deflated,
		UncompressedSize: 14,
		CompressedSize:   16,
		CRC32:            0x8CD04A9D,
		DOSTime:          MinDOSTime,
		VersionNeeded:    versionNeededFor(Deflated),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLocalHeader(&buf, meta))

	got, err := ReadLocalHeader(&buf)
	require.NoError(t, err)
	assert.True(t, HeadersEqual(meta, got))
	assert.Equal(t, meta.UncompressedSize, got.UncompressedSize)
	assert.Equal(t, meta.CompressedSize, got.CompressedSize)
	assert.Equal(t, meta.CRC32, got.CRC32)
}

func TestReadLocalHeader_RejectsTrailingDescriptor(t *testing.T) {
	meta := EntryMeta{Name: "x", Flags: flagTrailingDescriptor, VersionNeeded: 20, Method: Deflated}
	var buf bytes.Buffer
	// write raw, bypassing WriteLocalHeader's flag-clearing, to simulate an archive that sets bit 3.
	fh := fixedSizeLocalHeader{
		Signature:      sigLocalFileHeader,
		VersionNeeded:  meta.VersionNeeded,
		Flags:          meta.Flags,
		Method:         uint16(meta.Method),
		FileNameLength: uint16(len(meta.Name)),
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &fh))
	buf.WriteString(meta.Name)

	_, err := ReadLocalHeader(&buf)
	require.Error(t, err)
	assert.True(t, Is(err, Unsupported))
}

func TestReadLocalHeader_RejectsUnsupportedMethod(t *testing.T) {
	var buf bytes.Buffer
	fh := fixedSizeLocalHeader{
		Signature:     sigLocalFileHeader,
		VersionNeeded: 20,
		Method:        99,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &fh))

	_, err := ReadLocalHeader(&buf)
	require.Error(t, err)
	assert.True(t, Is(err, Unsupported))
}

func TestReadLocalHeader_RejectsBadSignature(t *testing.T) {
	var buf bytes.Buffer
	fh := fixedSizeLocalHeader{Signature: 0xDEADBEEF}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &fh))

	_, err := ReadLocalHeader(&buf)
	require.Error(t, err)
	assert.True(t, Is(err, IO))
}

func TestCentralDirectoryHeader_WriteReadRoundTrip(t *testing.T) {
	meta := EntryMeta{
		Name:              "dir/file.bin",
		Comment:           "a comment",
		Extra:             []byte{0xAA},
		Method:            Stored,
		UncompressedSize:  0,
		CompressedSize:    0,
		DOSTime:           MaxDOSTime,
		VersionNeeded:     versionNeededFor(Stored),
		LocalHeaderOffset: 1234,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCentralDirectoryHeader(&buf, meta))

	got, err := ReadCentralDirectoryHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, meta.Name, got.Name)
	assert.Equal(t, meta.Comment, got.Comment)
	assert.Equal(t, meta.Extra, got.Extra)
	assert.Equal(t, meta.LocalHeaderOffset, got.LocalHeaderOffset)
	assert.Equal(t, DefaultExternalAttrs, got.ExternalAttrs)
}

func TestWriteHeader_TooLargeFields(t *testing.T) {
	huge := make([]byte, maxUint16+1)

	var buf bytes.Buffer
	err := WriteLocalHeader(&buf, EntryMeta{Name: string(huge)})
	require.Error(t, err)
	assert.True(t, Is(err, TooLarge))

	buf.Reset()
	err = WriteCentralDirectoryHeader(&buf, EntryMeta{Comment: string(huge)})
	require.Error(t, err)
	assert.True(t, Is(err, TooLarge))
}

func TestWriteEOCD_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEOCD(&buf, 0, 0, 0, ""))

	want := []byte{
		0x50, 0x4B, 0x05, 0x06,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestWriteEOCD_TooManyEntries(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEOCD(&buf, 0, 0, maxUint16+1, "")
	require.Error(t, err)
	assert.True(t, Is(err, TooLarge))
}

func TestReadEOCD_InsufficientBuffer(t *testing.T) {
	_, err := ReadEOCD(make([]byte, 10), 0)
	assert.ErrorIs(t, err, errEOCDInsufficientBuffer)
}

func TestReadEOCD_FalsePositiveSignatureInData(t *testing.T) {
	buf := make([]byte, 22)
	buf[0], buf[1], buf[2], buf[3] = 0x50, 0x4B, 0x05, 0x06
	// plausible-looking but the declared comment length runs past the buffer.
	buf[20], buf[21] = 0xFF, 0xFF

	_, err := ReadEOCD(buf, 0)
	assert.ErrorIs(t, err, errEOCDFalsePositive)
}

func TestReadEOCD_RejectsSpannedArchive(t *testing.T) {
	var buf bytes.Buffer
	fh := fixedSizeEOCD{
		Signature:  sigEndOfCentralDirectory,
		DiskNumber: 1,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &fh))

	_, err := ReadEOCD(buf.Bytes(), 0)
	require.Error(t, err)
	assert.True(t, Is(err, Unsupported))
}

func TestHeadersEqual(t *testing.T) {
	a := EntryMeta{Name: "f", VersionNeeded: 20, Flags: 0, Method: Deflated, DOSTime: 1}
	b := a
	b.CRC32 = 123
	b.CompressedSize = 456
	b.Extra = []byte{1, 2, 3}
	assert.True(t, HeadersEqual(a, b))

	c := a
	c.Name = "g"
	assert.False(t, HeadersEqual(a, c))
}
