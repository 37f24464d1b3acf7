package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("parsed") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("parsed") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("parsed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	tests := []struct {
		name   string
		cached bool
		want   []string
	}{
		{"fresh", false, []string{"Rendered Somma", "formats=txt,svg", "blocks=3", "lines=5", "depth=2", "cache=fresh", "elapsed="}},
		{"cached", true, []string{"Rendered Somma", "cache=cached"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			res := &pipeline.Result{
				Stats:     pipeline.Stats{Stats: pseudocode.Stats{Blocks: 3, Leaves: 5, MaxDepth: 2}},
				CacheInfo: pipeline.CacheInfo{RenderHit: tt.cached},
			}
			newProgress(newLogger(&buf, log.InfoLevel), "Somma").done([]string{"txt", "svg"}, res)

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext did not return the stored logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext without a logger should fall back to log.Default()")
	}
}

func TestRootCommandStoresLogger(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{"tree", "-"})

	var got *log.Logger
	tree, _, err := root.Find([]string{"tree"})
	if err != nil {
		t.Fatal(err)
	}
	run := tree.RunE
	tree.RunE = func(cmd *cobra.Command, args []string) error {
		got = loggerFromContext(cmd.Context())
		return nil
	}
	defer func() { tree.RunE = run }()

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != c.Logger {
		t.Error("subcommand context does not carry the CLI logger")
	}
}
