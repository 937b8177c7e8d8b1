package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h for every event category.
func (h *LogHooks) Register() {
	SetSimulationHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnSimulationStart(_ context.Context, id string, nodes, edges int) {
	h.Logger.Debug("simulation started", "request", id, "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnSimulationComplete(_ context.Context, id string, ticks int, d time.Duration, err error) {
	h.done("simulation finished", err, "request", id, "ticks", ticks, "duration", d)
}

func (h *LogHooks) OnStaleMessage(_ context.Context, id string) {
	h.Logger.Debug("dropped stale message", "request", id)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.Logger.Debug("layout started", "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.done("layout finished", err, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnIndexBuild(_ context.Context, kind string, nodes int, d time.Duration) {
	h.Logger.Debug("built spatial index", "kind", kind, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render finished", err, "formats", strings.Join(formats, ","), "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}
