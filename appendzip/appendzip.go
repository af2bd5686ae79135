// Package appendzip implements the appendzip convention: appending an arbitrary ZIP archive to the tail
// of a host file, followed by a 4-byte little-endian offset so the embedded archive can be found again.
// zipcore.OpenEmbedded consumes files produced this way.
package appendzip

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/nguyengg/zipcore"
)

// Append opens hostPath for appending and copies zipPath's bytes to its end, followed by the 4-byte
// little-endian offset of the ZIP's start within the resulting file. It returns that offset.
func Append(hostPath, zipPath string) (offset int64, err error) {
	host, err := os.OpenFile(hostPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	defer host.Close()

	offset, err = host.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	zf, err := os.Open(zipPath)
	if err != nil {
		return 0, err
	}
	defer zf.Close()

	if _, err = io.Copy(host, zf); err != nil {
		return 0, err
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], uint32(offset))
	if _, err = host.Write(trailer[:]); err != nil {
		return 0, err
	}

	return offset, nil
}

// OpenHostWithAppendedZip opens the ZIP archive embedded in path per the appendzip convention.
func OpenHostWithAppendedZip(path string) (*zipcore.Reader, error) {
	return zipcore.OpenEmbedded(path)
}
