package version

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Version information for the rustidy CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

const tagline = "Rust sources, tidied without a compiler"

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is a trimmed snapshot of the build variables.
type Info struct {
	Version    string
	GitCommit  string
	GitMessage string
	BuildDate  string
}

// Collect reads the build variables; an empty Version reads as "dev".
func Collect() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:    v,
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
	}
}

// Fields selects the optional metadata to print.
type Fields struct {
	Hash, Message, Date bool
}

// All turns every optional field on.
func All() Fields { return Fields{Hash: true, Message: true, Date: true} }

func (f Fields) any() bool { return f.Hash || f.Message || f.Date }

// Colorize paints major.minor.patch of a semantic version; anything that is
// not three dot-separated parts is returned as is.
func Colorize(v string, enabled bool) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	for i, c := range []*color.Color{majorColor, minorColor, patchColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// WritePretty prints the human readable banner.
func WritePretty(w io.Writer, info Info, fields Fields, useColor bool) {
	fmt.Fprintf(w, "rustidy %s: %s\n", Colorize(info.Version, useColor), tagline)
	if fields.Hash {
		fmt.Fprintf(w, "commit:  %s\n", valueOrUnknown(info.GitCommit))
	}
	if fields.Message {
		fmt.Fprintf(w, "message: %s\n", valueOrUnknown(info.GitMessage))
	}
	if fields.Date {
		fmt.Fprintf(w, "built:   %s\n", valueOrUnknown(info.BuildDate))
	}
	if !fields.any() {
		fmt.Fprintln(w, "set --hash, --message, --date, or --full for more build trivia")
	}
}

type payload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// WriteJSON prints the build info as indented JSON.
func WriteJSON(w io.Writer, info Info, fields Fields) error {
	p := payload{
		Tool:    "rustidy",
		Version: info.Version,
		Tagline: tagline,
	}
	if fields.Hash {
		p.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if fields.Message {
		p.GitMessage = valueOrUnknown(info.GitMessage)
	}
	if fields.Date {
		p.BuildDate = valueOrUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
