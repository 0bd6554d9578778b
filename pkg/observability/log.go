package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetDecodeHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnDecodeStart(_ context.Context, format, kind string) {
	h.logger.Debug("decode start", "format", format, "kind", kind)
}

func (h *LogHooks) OnDecodeComplete(_ context.Context, format, kind string, items int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decode failed", "format", format, "kind", kind, "err", err)
		return
	}
	h.logger.Debug("decoded", "format", format, "kind", kind, "items", items, "took", d)
}

func (h *LogHooks) OnVersionWarning(_ context.Context, url, declared, known string) {
	h.logger.Debug("newer api version", "url", url, "declared", declared, "known", known)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ DecodeHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)
