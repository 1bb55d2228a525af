package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for extraction. The
// registers are distributed as PDF only.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt reports whether a normalized extension is accepted.
func AllowedExt(ext string) bool {
	_, ok := AllowedExtensions[ext]
	return ok
}
