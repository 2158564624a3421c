package cursor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"rustidy/internal/source"
)

// Kind classifies a parse failure.
type Kind uint8

const (
	KindExpected Kind = iota
	KindUnexpected
	KindCustom
	KindAggregate
	KindTooDeep
	KindUnclosed
)

func (k Kind) String() string {
	switch k {
	case KindExpected:
		return "expected"
	case KindUnexpected:
		return "unexpected"
	case KindCustom:
		return "custom"
	case KindAggregate:
		return "aggregate"
	case KindTooDeep:
		return "too-deep"
	case KindUnclosed:
		return "unclosed"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is a parse failure. Span covers the input consumed by the failed
// production; Pos is where it stopped.
type Error struct {
	Kind     Kind
	Span     source.Span
	Pos      source.Pos
	Expected []string
	Found    string
	Msg      string
	// Open points at the opening delimiter for KindUnclosed.
	Open   source.Span
	Causes []*Error
	Fatal  bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindExpected, KindAggregate:
		if e.Msg != "" {
			return e.Msg
		}
		msg := expectedList(e.Expected)
		if e.Found != "" {
			msg += ", found " + e.Found
		}
		return msg
	case KindUnexpected:
		if e.Msg != "" {
			return e.Msg
		}
		return "unexpected " + e.Found
	default:
		return e.Msg
	}
}

// Unwrap exposes the causes of an aggregate to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if len(e.Causes) == 0 {
		return nil
	}
	out := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		out[i] = c
	}
	return out
}

func expectedList(items []string) string {
	switch len(items) {
	case 0:
		return "syntax error"
	case 1:
		return "expected " + items[0]
	default:
		return "expected one of: " + strings.Join(items, ", ")
	}
}

// Expected builds a non-fatal "expected what" error at the current position.
func (c *Cursor) Expected(what ...string) *Error {
	return &Error{
		Kind:     KindExpected,
		Span:     c.Here(),
		Pos:      c.pos,
		Expected: what,
		Found:    c.found(),
	}
}

// Unexpected builds a non-fatal error for the token at the current position.
func (c *Cursor) Unexpected(what string) *Error {
	return &Error{Kind: KindUnexpected, Span: c.Here(), Pos: c.pos, Found: what}
}

// Errorf builds a custom error spanning start..pos.
func (c *Cursor) Errorf(start source.Pos, format string, args ...any) *Error {
	return &Error{Kind: KindCustom, Span: c.SpanFrom(start), Pos: c.pos, Msg: fmt.Sprintf(format, args...)}
}

// Unclosed builds a fatal error for a delimiter opened at open.
func (c *Cursor) Unclosed(open source.Span, closing string) *Error {
	return &Error{
		Kind:     KindUnclosed,
		Span:     source.Span{File: open.File, Start: open.Start, End: c.pos},
		Pos:      c.pos,
		Open:     open,
		Expected: []string{"`" + closing + "`"},
		Msg:      fmt.Sprintf("unclosed delimiter: expected `%s`, found %s", closing, c.found()),
		Fatal:    true,
	}
}

// found describes the input at the current position for messages.
func (c *Cursor) found() string {
	if c.EOF() {
		return "end of file"
	}
	r, _ := c.Rune()
	if r == '\n' {
		return "newline"
	}
	return fmt.Sprintf("`%c`", r)
}

// IsFatal reports whether err is a committed parse failure.
func IsFatal(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Fatal
}

// AsFatal returns err marked as fatal. Non-parse errors are returned as is.
func AsFatal(err error) error {
	var pe *Error
	if !errors.As(err, &pe) || pe.Fatal {
		return err
	}
	cp := *pe
	cp.Fatal = true
	return &cp
}

// Aggregate merges alternative failures. Only the failures that got
// furthest survive; a single survivor is returned unchanged.
func Aggregate(span source.Span, errs []*Error) *Error {
	if len(errs) == 0 {
		return &Error{Kind: KindExpected, Span: span, Pos: span.End}
	}
	best := errs[0].Pos
	for _, e := range errs[1:] {
		if e.Pos > best {
			best = e.Pos
		}
	}
	var kept []*Error
	var expected []string
	for _, e := range errs {
		if e.Pos != best {
			continue
		}
		kept = append(kept, e)
		for _, x := range e.Expected {
			if !slices.Contains(expected, x) {
				expected = append(expected, x)
			}
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	out := &Error{
		Kind:     KindAggregate,
		Span:     span,
		Pos:      best,
		Expected: expected,
		Causes:   kept,
	}
	if span.End < best {
		out.Span.End = best
	}
	for _, e := range kept {
		if e.Found != "" {
			out.Found = e.Found
			break
		}
	}
	if len(expected) == 0 {
		msgs := make([]string, 0, len(kept))
		for _, e := range kept {
			msgs = append(msgs, e.Error())
		}
		out.Msg = strings.Join(msgs, "; ")
	}
	return out
}
