package resolve

import "strings"

// Module ids always use forward slashes, independent of host OS.

// Dirname returns everything before the final slash of id, or "" when
// id has no directory part.
func Dirname(id string) string {
	idx := strings.LastIndexByte(id, '/')
	if idx < 0 {
		return ""
	}
	return id[:idx]
}

// splitSegments splits a slash path into components, dropping a single
// leading or trailing slash but preserving interior empties so callers
// can reject them.
func splitSegments(p string) []string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// joinSegments is the inverse of splitSegments.
func joinSegments(segs []string) string {
	return strings.Join(segs, "/")
}
