// Package zipcore implements a hand-rolled reader and writer for PKWARE APPNOTE ZIP archives: local file
// headers, the central directory, and the end-of-central-directory record, with the STORED and DEFLATED
// storage methods.
//
// The package does not depend on archive/zip. It exists to provide direct, streaming access to individual
// entries without materializing the whole archive in memory, and to expose the low-level header codec and
// MS-DOS date/time conversions that higher layers (collection, appendzip) build on.
//
// Spanned ("multi-volume") archives, ZIP64 extensions, encryption, and storage methods other than STORED
// and DEFLATED are out of scope: Open rejects archives that require them, and Writer never produces them.
package zipcore
