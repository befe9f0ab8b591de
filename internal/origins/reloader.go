package origins

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Source hands out the policy in force for the current request.
type Source interface {
	Current() *Policy
}

// Current lets a fixed Policy act as its own Source.
func (p *Policy) Current() *Policy {
	return p
}

// Reloader periodically re-reads an allow-list file and swaps it in atomically. A file that
// fails to load or validate leaves the previous policy in place.
type Reloader struct {
	path     string
	log      *zap.Logger
	interval time.Duration
	current  atomic.Pointer[Policy]
}

// NewReloader loads path once and returns a Reloader serving it. An empty path serves
// DefaultPolicy and never reloads.
func NewReloader(path string, log *zap.Logger, interval time.Duration) (*Reloader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	r := &Reloader{path: path, log: log, interval: interval}
	r.current.Store(p)
	return r, nil
}

// Current implements Source.
func (r *Reloader) Current() *Policy {
	return r.current.Load()
}

// Start runs the reload loop until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) {
	if r.path == "" || r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reload()
		}
	}
}

// Reload re-reads the file now. It reports whether a new policy was installed.
func (r *Reloader) Reload() bool {
	if r.path == "" {
		return false
	}
	p, err := LoadFile(r.path)
	if err != nil {
		r.log.Warn("failed_to_reload_allowed_origins_keeping_previous",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return false
	}
	r.current.Store(p)
	r.log.Debug("allowed_origins_reloaded",
		zap.String("path", r.path),
		zap.Int("exact", len(p.Exact)),
		zap.Int("suffixes", len(p.Suffixes)),
	)
	return true
}
