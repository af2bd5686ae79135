// Command zcrc32 prints the CRC-32 (IEEE) checksum of a file, matching the checksum algorithm used
// throughout the ZIP format.
package main

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
)

var opts struct {
	Args struct {
		File flags.Filename `positional-arg-name:"file" description:"file to checksum"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	f, err := os.Open(string(opts.Args.File))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err = io.Copy(h, f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%08x\n", h.Sum32())
}
