package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func withBuildVars(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origMessage, origDate := Version, GitCommit, GitMessage, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMessage, origDate
	})
	Version, GitCommit, GitMessage, BuildDate = v, commit, "", date
}

func TestCollectTrimsAndDefaults(t *testing.T) {
	withBuildVars(t, "  ", " abc123 ", "")
	info := Collect()
	if info.Version != "dev" || info.GitCommit != "abc123" || info.BuildDate != "" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestColorize(t *testing.T) {
	tests := []struct {
		in      string
		enabled bool
		want    string
	}{
		{"1.2.3", false, "1.2.3"},
		{"0.1.0-dev", false, "0.1.0-dev"},
		{"dev", true, "dev"},
		{"1.2", true, "1.2"},
	}
	for _, tt := range tests {
		if got := Colorize(tt.in, tt.enabled); got != tt.want {
			t.Errorf("Colorize(%q, %v) = %q, want %q", tt.in, tt.enabled, got, tt.want)
		}
	}
	if got := Colorize("1.2.3-rc.1", true); !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("colored version = %q", got)
	}
}

func TestWritePretty(t *testing.T) {
	withBuildVars(t, "1.2.3", "abc123", "")
	var buf bytes.Buffer
	WritePretty(&buf, Collect(), Fields{Hash: true, Date: true}, false)
	out := buf.String()
	for _, want := range []string{"rustidy 1.2.3: ", "commit:  abc123", "built:   unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "message:") || strings.Contains(out, "build trivia") {
		t.Errorf("unexpected lines:\n%s", out)
	}

	buf.Reset()
	WritePretty(&buf, Collect(), Fields{}, false)
	if !strings.Contains(buf.String(), "--full") {
		t.Errorf("hint missing:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	withBuildVars(t, "1.2.3", "", "2024-01-15T10:30:00Z")
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Collect(), All()); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"tool":        "rustidy",
		"version":     "1.2.3",
		"git_commit":  "unknown",
		"git_message": "unknown",
		"build_date":  "2024-01-15T10:30:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	buf.Reset()
	if err := WriteJSON(&buf, Collect(), Fields{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "git_commit") {
		t.Errorf("optional fields must be omitted:\n%s", buf.String())
	}
}
