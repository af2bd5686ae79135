// Command zipdemo lists the entries of a zip archive and extracts one of them, demonstrating the central
// elements of the zipcore package.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/schollz/progressbar/v3"

	"github.com/nguyengg/zipcore"
	"github.com/nguyengg/zipcore/collection"
	"github.com/nguyengg/zipcore/internal/clog"
	"github.com/nguyengg/zipcore/internal/config"
)

var opts struct {
	Output string `short:"o" long:"output" description:"directory to write the extracted entry to instead of stdout; defaults to output-dir in ~/.zipcore/config.ini, if set"`
	Args   struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"path to the zip archive"`
		Name    string         `positional-arg-name:"name" description:"name of the entry to extract and print"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	logger := clog.MustLogger(clog.WithLogger(context.Background(), "zipdemo: "))

	defaults, err := config.Load()
	if err != nil {
		logger.Printf("ignoring unreadable config: %v", err)
	}
	outputDir := opts.Output
	if outputDir == "" {
		outputDir = defaults.OutputDir
	}

	logger.Println("instantiating archive collection")
	r, err := zipcore.Open(string(opts.Args.Archive), 0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	c := collection.NewArchiveCollection(r)

	n := 0
	for e := range c.Entries() {
		n++
		logger.Printf("  %s (%s)", e.Name, humanize.Bytes(uint64(e.Size)))
	}
	logger.Printf("list length: %d", n)

	e, ok := c.GetEntry(opts.Args.Name)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: could not find %s in %s\n", opts.Args.Name, opts.Args.Archive)
		os.Exit(1)
	}

	rc, err := c.GetInputStream(e.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: found an entry for %s but could not read it: %v\n", e.Name, err)
		os.Exit(1)
	}
	defer rc.Close()

	if outputDir == "" {
		logger.Printf("contents of entry, %s:", e.Name)
		if _, err = io.Copy(os.Stdout, rc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	dest := filepath.Join(outputDir, filepath.Base(e.Name))
	out, err := os.Create(dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(e.Size, fmt.Sprintf("extracting %s", e.Name))
	logger.Printf("writing entry %s to %s (%s)", e.Name, dest, humanize.Bytes(uint64(e.Size)))
	if _, err = io.Copy(io.MultiWriter(out, bar), rc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
