package resolver

import (
	"path/filepath"
	"strings"
)

const fallbackSegment = "branch"

// Sanitize maps a branch name to a relative path. Each "/"-separated segment
// becomes a directory; characters outside [A-Za-z0-9._-] become "-".
func Sanitize(branch string) string {
	var segs []string
	for _, seg := range strings.Split(branch, "/") {
		if seg == "" {
			continue
		}
		if seg == "." || seg == ".." {
			// never climb out of the worktrees dir
			segs = append(segs, strings.Repeat("-", len(seg)))
			continue
		}
		segs = append(segs, strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			case r == '-' || r == '_' || r == '.':
				return r
			}
			return '-'
		}, seg))
	}
	if len(segs) == 0 {
		return fallbackSegment
	}
	return filepath.Join(segs...)
}
