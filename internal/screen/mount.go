package screen

import (
	"context"

	"factory-admin/internal/entity"
	"factory-admin/internal/feed"
	"factory-admin/internal/store"

	"go.uber.org/zap"
)

// Mount subscribes the screen to changes on its table and loads it. Every
// change notification, from this client or any other, triggers a reload.
// Mounting a mounted screen does nothing.
func (s *Screen[T]) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	epoch := s.epoch
	if s.feed != nil {
		h := s.feed.Subscribe(s.def.Table, func(ch feed.Change) { s.changed(ctx, epoch, ch) })
		s.handle = &h
	}
	s.mu.Unlock()

	s.logger.Debug("screen mounted")
	s.Load(ctx)
}

// Unmount unsubscribes and waits for reloads started by the feed. Results of
// requests still in flight are discarded.
func (s *Screen[T]) Unmount() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.loading = false
	h := s.handle
	s.handle = nil
	s.cancel()
	s.cancel = nil
	s.mu.Unlock()

	if h != nil {
		s.feed.Unsubscribe(*h)
	}
	s.wg.Wait()
	s.logger.Debug("screen unmounted")
}

func (s *Screen[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// changed runs on the publisher's goroutine, so the reload happens on its own.
func (s *Screen[T]) changed(ctx context.Context, epoch uint64, ch feed.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.logger.Debug("change received",
		zap.String("action", string(ch.Action)),
		zap.Uint("id", ch.ID),
		zap.String("origin", ch.Origin),
	)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Load(ctx)
	}()
}

// Snapshot is a render-ready copy of the screen state.
type Snapshot struct {
	Meta    entity.Meta
	Loaded  bool
	Rows    []entity.Row
	Dialogs Dialogs
}

func (s *Screen[T]) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Meta:    s.def.Meta,
		Loaded:  s.loaded,
		Rows:    s.def.Rows(s.rows),
		Dialogs: s.dialogs.clone(),
	}
}

// Model is the type-independent surface of a Screen.
type Model interface {
	Meta() entity.Meta
	Mount(ctx context.Context)
	Unmount()
	Load(ctx context.Context)
	Create(ctx context.Context, draft entity.Draft) error
	Update(ctx context.Context, id uint, draft entity.Draft) error
	Remove(ctx context.Context, id uint) error
	OpenAdd()
	OpenEdit(id uint) bool
	OpenDelete(id uint) bool
	Close()
	Snapshot() Snapshot
	TakeNotifications() []Notification
}

var _ Model = (*Screen[store.Record])(nil)

// Factory builds fresh screens for one entity.
type Factory struct {
	Meta entity.Meta
	New  func() Model
}
