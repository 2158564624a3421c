package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Format is the output encoding of a stream tracer.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output file extension
	FormatText                 // human-readable lines
	FormatNDJSON               // one JSON object per line
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent renders ev in the given format, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText: "15:04:05.000000 #seq scope → name (detail) {k=v}"
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000000"))
	fmt.Fprintf(&sb, " #%d %-6s ", ev.Seq, ev.Scope)

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	}
	sb.WriteString(ev.Name)

	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteByte('\n')
	return []byte(sb.String())
}
