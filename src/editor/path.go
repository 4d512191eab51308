package editor

import "strings"

// NormalizePath collapses repeated slashes, drops a trailing slash and roots the path:
// "a/b/c/", "/a/b/c" and "a//b/c" all become "/a/b/c".
func NormalizePath(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return joinPath(kept)
}

func joinPath(names []string) string {
	return "/" + strings.Join(names, "/")
}

// underPath reports whether path equals base or lies below it.
func underPath(path, base string) bool {
	if path == base || base == "/" {
		return true
	}
	return strings.HasPrefix(path, base+"/")
}

// lastSegment returns the final element name of a normalized path.
func lastSegment(path string) string {
	return path[strings.LastIndexByte(path, '/')+1:]
}
