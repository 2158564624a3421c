package format

import "strings"

// comment is one comment of a whitespace leaf.
type comment struct {
	text string
	// breaks is the number of newlines between the previous token (or
	// comment) and this one.
	breaks int
	line   bool
}

// gap is a whitespace leaf split into comments.
type gap struct {
	comments []comment
	// trailing counts newlines after the last comment.
	trailing int
}

func (g gap) breaks() bool {
	if g.trailing > 0 {
		return true
	}
	for _, c := range g.comments {
		if c.breaks > 0 || c.line {
			return true
		}
	}
	return false
}

// splitGap scans text the parser accepted as whitespace.
func splitGap(text string) gap {
	var g gap
	nl := 0
	for i := 0; i < len(text); {
		switch {
		case text[i] == '\n':
			nl++
			i++
		case strings.HasPrefix(text[i:], "//"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			g.comments = append(g.comments, comment{
				text:   strings.TrimRight(text[i:i+end], " \t\r"),
				breaks: nl,
				line:   true,
			})
			nl = 0
			i += end
		case strings.HasPrefix(text[i:], "/*"):
			end := blockCommentEnd(text, i)
			g.comments = append(g.comments, comment{text: text[i:end], breaks: nl})
			nl = 0
			i = end
		default:
			i++
		}
	}
	g.trailing = nl
	return g
}

// blockCommentEnd returns the offset after the nested comment at i.
func blockCommentEnd(text string, i int) int {
	depth := 0
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(text[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(text)
}
