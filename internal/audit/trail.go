// Package audit keeps a trail of processed webhook events for the
// operational read path. Recording is strictly best-effort and never
// interferes with fulfillment.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/qtix/ticket-gateway/internal/logger"
	"github.com/qtix/ticket-gateway/internal/model"
	"github.com/qtix/ticket-gateway/internal/repository"
	"github.com/qtix/ticket-gateway/internal/util"
	"go.uber.org/zap"
)

type Trail interface {
	Record(ctx context.Context, ev model.AuditEvent)
	Recent(ctx context.Context, limit, offset int) ([]model.AuditEvent, error)
}

// MemoryTrail is a bounded in-process ring buffer, the default when no
// ClickHouse store is configured. Entries are lost on restart.
type MemoryTrail struct {
	mu  sync.Mutex
	buf []model.AuditEvent
	cap int
}

func NewMemoryTrail(capacity int) *MemoryTrail {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryTrail{cap: capacity}
}

func (t *MemoryTrail) Record(_ context.Context, ev model.AuditEvent) {
	stamp(&ev)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, ev)
	if len(t.buf) > t.cap {
		t.buf = t.buf[len(t.buf)-t.cap:]
	}
}

// Recent returns entries newest-first.
func (t *MemoryTrail) Recent(_ context.Context, limit, offset int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.buf)
	out := make([]model.AuditEvent, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, t.buf[i])
	}
	return out, nil
}

// StoreTrail persists entries through an EventsRepository (ClickHouse).
// Write failures are logged and dropped.
type StoreTrail struct {
	repo repository.EventsRepository
}

func NewStoreTrail(repo repository.EventsRepository) *StoreTrail {
	return &StoreTrail{repo: repo}
}

func (t *StoreTrail) Record(ctx context.Context, ev model.AuditEvent) {
	stamp(&ev)
	if err := t.repo.Insert(ctx, ev); err != nil {
		logger.Log.Warn("audit insert failed", zap.Error(err), zap.String("stage", ev.Stage))
	}
}

func (t *StoreTrail) Recent(ctx context.Context, limit, offset int) ([]model.AuditEvent, error) {
	return t.repo.Recent(ctx, limit, offset)
}

func stamp(ev *model.AuditEvent) {
	if ev.ID == "" {
		ev.ID = util.NewID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
}
