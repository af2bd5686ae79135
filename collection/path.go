package collection

import "strings"

// CleanEntryName converts an OS file path into the forward-slash-separated, non-absolute form ZIP entry
// names use, stripping any leading slashes and "../" segments.
func CleanEntryName(path string) string {
	name := strings.ReplaceAll(path, `\`, "/")
	name = strings.TrimLeft(name, "/")
	for strings.HasPrefix(name, "../") {
		name = name[len("../"):]
	}
	return name
}

// IsRelative reports whether name is a safe, relative archive entry name: no leading slash, and no ".."
// path segment that could escape an extraction root.
func IsRelative(name string) bool {
	if strings.HasPrefix(name, "/") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}
