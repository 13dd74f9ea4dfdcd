package log

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Simulator modules.
const (
	EmuModule     = "emu"     // run loop, traps and faults
	ITraceModule  = "itrace"  // every executed instruction
	MTraceModule  = "mtrace"  // every memory access
	LoaderModule  = "loader"  // image loading
	MonitorModule = "monitor" // interactive debugger
	CacheModule   = "cache"   // data cache model
)

var root atomic.Value

func init() {
	root.Store(NewLogger(DiscardHandler()))
}

// InitLogger installs a text logger writing records at or above logLevel to w.
func InitLogger(logLevel string, w io.Writer) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	SetDefault(NewLogger(NewTextHandler(w, lvl)))
	return nil
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a child of the root logger carrying ctx.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

var (
	modulesMu sync.RWMutex
	modules   = map[string]bool{
		EmuModule:     true,
		LoaderModule:  true,
		MonitorModule: true,
		CacheModule:   true,
		ITraceModule:  false,
		MTraceModule:  false,
	}
)

// EnableModule enables trace and debug records for module.
func EnableModule(module string) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	modules[module] = true
}

// DisableModule disables trace and debug records for module.
func DisableModule(module string) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	modules[module] = false
}

// EnableModules enables a comma separated list of modules.
func EnableModules(list string) {
	for _, m := range strings.Split(list, ",") {
		if m = strings.TrimSpace(m); m != "" {
			EnableModule(m)
		}
	}
}

// ModuleEnabled reports whether trace and debug records of module are kept.
func ModuleEnabled(module string) bool {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	return modules[module]
}

// TraceEnabled reports whether a Trace call for module would be emitted.
// Callers use it to skip building expensive attributes.
func TraceEnabled(module string) bool {
	return ModuleEnabled(module) && Root().Enabled(context.Background(), LevelTrace)
}

// Trace logs at trace level if module is enabled.
func Trace(module string, msg string, ctx ...any) {
	if !ModuleEnabled(module) {
		return
	}
	Root().Trace(module, msg, ctx...)
}

// Debug logs at debug level if module is enabled.
func Debug(module string, msg string, ctx ...any) {
	if !ModuleEnabled(module) {
		return
	}
	Root().Debug(module, msg, ctx...)
}

// Info, Warn and Error do not filter on module.
func Info(module string, msg string, ctx ...any) {
	Root().Info(module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...any) {
	Root().Warn(module, msg, ctx...)
}

func Error(module string, msg string, ctx ...any) {
	Root().Error(module, msg, ctx...)
}
