package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Older Ordering = -1
	Equal Ordering = 0
	Newer Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Older:
		return "older"
	case Equal:
		return "equal"
	case Newer:
		return "newer"
	default:
		return "unknown"
	}
}

// Version is a parsed plugin version such as "2.10.1" or "1.0-beta-2".
type Version struct {
	raw      string
	segments []versionSegment
}

type versionSegment struct {
	number    uint64
	qualifier string
}

// ParseVersion parses a dot-separated version string.
// Each segment starts with digits and may carry a qualifier suffix.
func ParseVersion(raw string) (Version, error) {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return Version{}, invalidVersion(raw, "empty or padded value")
	}
	parts := strings.Split(raw, ".")
	segments := make([]versionSegment, 0, len(parts))
	for _, part := range parts {
		segment, err := parseSegment(part)
		if err != nil {
			return Version{}, invalidVersion(raw, err.Error())
		}
		segments = append(segments, segment)
	}
	return Version{raw: raw, segments: segments}, nil
}

// MustParseVersion is ParseVersion for constants and tests.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func parseSegment(part string) (versionSegment, error) {
	if part == "" {
		return versionSegment{}, fmt.Errorf("empty segment")
	}
	end := 0
	for end < len(part) && part[end] >= '0' && part[end] <= '9' {
		end++
	}
	if end == 0 {
		return versionSegment{}, fmt.Errorf("segment %q must start with a digit", part)
	}
	number, err := strconv.ParseUint(part[:end], 10, 64)
	if err != nil {
		return versionSegment{}, fmt.Errorf("segment %q: %w", part, err)
	}
	qualifier := part[end:]
	if strings.ContainsAny(qualifier, " \t\r\n") {
		return versionSegment{}, fmt.Errorf("segment %q contains whitespace", part)
	}
	return versionSegment{number: number, qualifier: qualifier}, nil
}

func invalidVersion(raw, reason string) error {
	return E(CodeInvalidArgument, "parse version", fmt.Sprintf("%q: %s", raw, reason), ErrInvalidVersionFormat)
}

// String returns the version as it was written.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return len(v.segments) == 0
}

// Compare orders v relative to other. Missing trailing segments count as zero;
// an unqualified segment sorts before a qualified one with the same number.
func (v Version) Compare(other Version) Ordering {
	n := len(v.segments)
	if len(other.segments) > n {
		n = len(other.segments)
	}
	for i := 0; i < n; i++ {
		if ord := compareSegment(segmentAt(v.segments, i), segmentAt(other.segments, i)); ord != Equal {
			return ord
		}
	}
	return Equal
}

func (v Version) IsNewerThan(other Version) bool { return v.Compare(other) == Newer }
func (v Version) IsOlderThan(other Version) bool { return v.Compare(other) == Older }

func segmentAt(segments []versionSegment, i int) versionSegment {
	if i < len(segments) {
		return segments[i]
	}
	return versionSegment{}
}

func compareSegment(a, b versionSegment) Ordering {
	switch {
	case a.number < b.number:
		return Older
	case a.number > b.number:
		return Newer
	}
	switch {
	case a.qualifier == b.qualifier:
		return Equal
	case a.qualifier == "":
		return Older
	case b.qualifier == "":
		return Newer
	case a.qualifier < b.qualifier:
		return Older
	default:
		return Newer
	}
}

// CompareVersions parses both strings and compares them.
func CompareVersions(a, b string) (Ordering, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return Equal, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return Equal, err
	}
	return va.Compare(vb), nil
}
