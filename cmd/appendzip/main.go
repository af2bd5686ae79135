// Command appendzip appends a zip archive to the end of another file, following the appendzip
// convention of a trailing 4-byte little-endian offset.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/nguyengg/zipcore/appendzip"
	"github.com/nguyengg/zipcore/internal/clog"
)

var opts struct {
	Args struct {
		HostFile flags.Filename `positional-arg-name:"exe-file" description:"file that the zip archive gets appended to"`
		ZipFile  flags.Filename `positional-arg-name:"zipfile" description:"zip archive to append"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	logger := clog.MustLogger(clog.WithLogger(context.Background(), "appendzip: "))

	logger.Printf("appending %s to %s", opts.Args.ZipFile, opts.Args.HostFile)
	offset, err := appendzip.Append(string(opts.Args.HostFile), string(opts.Args.ZipFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger.Printf("zip start will be at %d", offset)
}
