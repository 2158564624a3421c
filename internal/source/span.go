package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start Pos // в байтах включительно
	End   Pos // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return uint32(s.End - s.Start)
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File || s.Empty() || other.Empty() {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// Text returns the bytes covered by the span.
func (s Span) Text(f *File) string {
	if f == nil || int(s.End) > len(f.Content) || s.Start > s.End {
		return ""
	}
	return string(f.Content[s.Start:s.End])
}
