package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	cio "github.com/matzehuels/cartastrutturata/pkg/io"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

const program = "INIZIO\n    SE x > 0\n    ALLORA\n        Azione 1\n    FINE-SE\nFINE\n"

func TestTitleFromPath(t *testing.T) {
	tests := map[string]string{
		"somma.txt":          "somma",
		"dir/Esercizio 3.pc": "Esercizio 3",
		"noext":              "noext",
		"-":                  "Programma",
	}
	for in, want := range tests {
		if got := titleFromPath(in); got != want {
			t.Errorf("titleFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default", "", []string{"xlsx"}, map[string]string{"xlsx": "Somma.xlsx"}},
		{"exact", "out/x.svg", []string{"svg"}, map[string]string{"svg": "out/x.svg"}},
		{"base", "out/x", []string{"xlsx", "txt"}, map[string]string{"xlsx": "out/x.xlsx", "txt": "out/x.txt"}},
		{"strip known", "x.xlsx", []string{"xlsx", "tree"}, map[string]string{"xlsx": "x.xlsx", "tree": "x.tree.json"}},
		{"keep unknown", "v1.2", []string{"txt"}, map[string]string{"txt": "v1.2.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "Somma", tt.formats)
			for f, want := range tt.want {
				if got[f] != want {
					t.Errorf("path[%s] = %q, want %q", f, got[f], want)
				}
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		12:      "12 B",
		2048:    "2.0 KB",
		3 << 20: "3.0 MB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWriteHighlighted(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHighlighted(&buf, "SE x\n\tALLORA\n  a", false); err != nil {
		t.Fatal(err)
	}
	want := "SE x\n    ALLORA\na\n"
	if buf.String() != want {
		t.Errorf("writeHighlighted() = %q, want %q", buf.String(), want)
	}
}

func TestColorEnabled(t *testing.T) {
	if on, _ := colorEnabled(colorAlways, os.Stdout); !on {
		t.Error("always should enable colors")
	}
	if on, _ := colorEnabled(colorNever, os.Stdout); on {
		t.Error("never should disable colors")
	}
	if _, err := colorEnabled("sometimes", os.Stdout); err == nil {
		t.Error("invalid mode should fail")
	}
}

func TestWriteTree(t *testing.T) {
	forest, err := pseudocode.Parse(program)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeTree(&buf, forest, "json"); err != nil {
		t.Fatal(err)
	}
	back, err := cio.ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if pseudocode.Size(back) != pseudocode.Size(forest) {
		t.Errorf("size = %d, want %d", pseudocode.Size(back), pseudocode.Size(forest))
	}

	buf.Reset()
	if err := writeTree(&buf, forest, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "value: INIZIO") {
		t.Errorf("yaml output missing root block:\n%s", buf.String())
	}

	if err := writeTree(io.Discard, forest, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestPreviewModelScroll(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = strings.Repeat("x", i)
	}
	var m tea.Model = NewPreviewModel("t", lines)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 14})
	key := func(k string) {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	offset := func() int { return m.(PreviewModel).Offset }

	key("j")
	if offset() != 1 {
		t.Errorf("offset after j = %d, want 1", offset())
	}
	key("G")
	if offset() != 40 {
		t.Errorf("offset after G = %d, want 40", offset())
	}
	key("j")
	if offset() != 40 {
		t.Errorf("offset past end = %d, want 40", offset())
	}
	key("g")
	key("k")
	if offset() != 0 {
		t.Errorf("offset before start = %d, want 0", offset())
	}
	if view := m.View(); !strings.Contains(view, "[1-10/50]") {
		t.Errorf("view footer missing:\n%s", view)
	}
}

// newTestCLI isolates config and cache directories.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return New(io.Discard, log.InfoLevel)
}

func TestRenderCommand(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "Somma.txt")
	if err := os.WriteFile(in, []byte(program), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "somma")

	root := c.RootCommand()
	root.SetArgs([]string{"render", in, "-f", "xlsx,txt,tree", "-o", out, "--author", "Ada"})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{".xlsx", ".txt", ".tree.json"} {
		if _, err := os.Stat(out + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
	}
	text, _ := os.ReadFile(out + ".txt")
	if !strings.Contains(string(text), "Ada - Somma") {
		t.Errorf("text output missing heading:\n%s", text)
	}
}

func TestRenderCommandStrict(t *testing.T) {
	c := newTestCLI(t)
	in := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(in, []byte("INIZIO\nAzione"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"render", in, "--strict", "--no-cache", "-o", filepath.Join(t.TempDir(), "x")})
	if err := root.Execute(); err == nil {
		t.Error("strict render of an unclosed block should fail")
	}
}

func TestTreeCommand(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "p.txt")
	if err := os.WriteFile(in, []byte(program), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "tree.yaml")

	root := c.RootCommand()
	root.SetArgs([]string{"tree", in, "-f", "yaml", "-o", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("tree: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "INIZIO") {
		t.Errorf("tree output:\n%s", data)
	}
}

func TestConfigFlag(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("author = \"Ada\"\n[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Config.Author != "Ada" || c.Config.Cache.Backend != "none" {
		t.Errorf("config = %+v", c.Config)
	}
}

func TestConfigFlagInvalid(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"tape\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "cache", "path"})
	if err := root.Execute(); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestConfigInit(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `backend = "file"`) {
		t.Errorf("config file:\n%s", data)
	}
}
