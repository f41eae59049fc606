// Package pyver compares dotted numeric version strings.
//
// Comparison is numeric per segment, never lexicographic: "3.9" sorts below
// "3.10". Missing segments count as zero, so "3.10" equals "3.10.0".
package pyver

import (
	"fmt"
	"strconv"
	"strings"
)

type Version struct {
	Segments []int
	Raw      string
}

func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, fmt.Errorf("empty version string")
	}
	parts := strings.Split(raw, ".")
	segs := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version segment %q in %q", p, raw)
		}
		segs = append(segs, n)
	}
	return Version{Segments: segs, Raw: raw}, nil
}

// Compare returns -1, 0, or 1 as a orders before, equal to, or after b.
func Compare(a, b Version) int {
	n := len(a.Segments)
	if len(b.Segments) > n {
		n = len(b.Segments)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a.Segments) {
			av = a.Segments[i]
		}
		if i < len(b.Segments) {
			bv = b.Segments[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AtLeast reports whether installed satisfies the minimum required version.
func AtLeast(installed, minimum Version) bool {
	return Compare(installed, minimum) >= 0
}

func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	parts := make([]string, len(v.Segments))
	for i, s := range v.Segments {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ".")
}
