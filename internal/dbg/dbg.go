// Package dbg is an internal debug-dump helper, gated off by default and
// enabled by an environment variable, grounded on moznion-helium's
// internal/debug package: dump.go there guards every trace call behind a
// package-level debug.Enabled bool and a debug.Printf/IPrintf pair, rather
// than always formatting and discarding. This package follows the same
// gate but swaps the ad hoc struct-field printing for
// github.com/davecgh/go-spew, already part of the teacher's own dependency
// graph (pulled in transitively by testify, used here directly), and logs
// through log/slog to match this module's ambient logging convention
// (dpotapov-go-pages/pages.go's logger *slog.Logger field) instead of
// writing straight to stderr.
package dbg

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// envVar is read once, at package initialization; any non-empty value turns
// dumping on. Tests that need to exercise the gated path set this directly via
// SetEnabled rather than mutating the process environment, which would
// race with t.Parallel siblings.
const envVar = "HTMLKIT_DEBUG"

var (
	mu      sync.Mutex
	enabled bool
)

func init() {
	enabled = os.Getenv(envVar) != ""
}

// Enabled reports whether debug dumping is currently turned on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled overrides the environment-derived default, for tests that
// want to exercise Dump/Log without setting HTMLKIT_DEBUG in the process
// environment.
func SetEnabled(v bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = v
}

// Dump renders v with go-spew's default config (spew.Sdump: one-space
// indent, every value annotated with its type, pointer addresses and
// Stringer/error methods left on) when dumping is enabled, and returns the
// empty string otherwise so
// a call site can unconditionally do log.Debug(dbg.Dump(x)) without a
// separate Enabled() check at every call site.
func Dump(v any) string {
	if !Enabled() {
		return ""
	}
	return spew.Sdump(v)
}

// Log writes a structured slog record carrying v's spew dump under the
// "dump" attribute, a no-op when dumping is disabled. Grounded on
// dump.go's IPrintf/IRelease pattern of bracketing a traced call with
// START/END markers, adapted to slog's structured-attribute style instead
// of an indented text trace.
func Log(ctx context.Context, logger *slog.Logger, msg string, v any) {
	if !Enabled() {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, msg, slog.String("dump", spew.Sdump(v)))
}
