package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

// newLogger returns the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress reports a finished render on the log, for runs whose stdout is
// taken by the artifact itself.
type progress struct {
	logger *log.Logger
	title  string
	start  time.Time
}

func newProgress(l *log.Logger, title string) *progress {
	return &progress{logger: l, title: title, start: time.Now()}
}

// done logs the formats produced for res with the tree statistics and the
// elapsed time, e.g.
//
//	INFO Rendered Somma formats=txt blocks=3 lines=9 depth=2 cache=fresh elapsed=12ms
func (p *progress) done(formats []string, res *pipeline.Result) {
	cache := iconFresh
	if res.CacheInfo.RenderHit {
		cache = iconCached
	}
	p.logger.Info("Rendered "+p.title,
		"formats", strings.Join(formats, ","),
		"blocks", res.Stats.Blocks,
		"lines", res.Stats.Leaves,
		"depth", res.Stats.MaxDepth,
		"cache", cache,
		"elapsed", time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored by the root command, or
// log.Default() for commands run without it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
