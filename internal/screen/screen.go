// Package screen holds the state of one entity management screen: the loaded
// collection, the add/edit/delete dialogs and pending notifications.
package screen

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"factory-admin/internal/entity"
	"factory-admin/internal/feed"
	"factory-admin/internal/store"

	"go.uber.org/zap"
)

// Source is the row store a screen reads and writes.
type Source[T store.Record] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id uint, row T) (T, error)
	Delete(ctx context.Context, id uint) error
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Title   string
	Message string
	At      time.Time
}

// Form is an open dialog. ID is zero for the add dialog.
type Form struct {
	ID    uint
	Draft entity.Draft
}

// Dialogs are independent: the edit and delete dialogs may be open for the
// same row at once.
type Dialogs struct {
	Add    *Form
	Edit   *Form
	Delete *Form
}

func (d Dialogs) clone() Dialogs {
	cp := func(f *Form) *Form {
		if f == nil {
			return nil
		}
		return &Form{ID: f.ID, Draft: f.Draft.Clone()}
	}
	return Dialogs{Add: cp(d.Add), Edit: cp(d.Edit), Delete: cp(d.Delete)}
}

// Screen is safe for concurrent use. Local rows only change through a load;
// writes never patch them in place.
type Screen[T store.Record] struct {
	def    *entity.Definition[T]
	src    Source[T]
	feed   feed.Subscriber
	logger *zap.Logger

	mu      sync.Mutex
	rows    []T
	loaded  bool
	loading bool
	dialogs Dialogs
	notes   []Notification

	gen    uint64 // latest load
	epoch  uint64 // bumped on unmount
	handle *feed.Handle
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an unmounted screen. sub may be nil when the screen never mounts.
func New[T store.Record](def *entity.Definition[T], src Source[T], sub feed.Subscriber, logger *zap.Logger) *Screen[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screen[T]{
		def:    def,
		src:    src,
		feed:   sub,
		logger: logger.With(zap.String("screen", def.Slug)),
	}
}

func (s *Screen[T]) Meta() entity.Meta { return s.def.Meta }

// Load replaces the collection with a fresh list. A failure empties the
// collection and queues an error notification. The result is dropped when a
// newer load started meanwhile or the screen was unmounted.
func (s *Screen[T]) Load(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen, epoch := s.gen, s.epoch
	s.loading = true
	s.mu.Unlock()

	rows, err := s.src.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || epoch != s.epoch {
		return
	}
	s.loading = false
	s.loaded = true
	if err != nil {
		s.rows = nil
		s.logger.Error("load failed", zap.Error(err))
		s.notify(LevelError, "Error", fmt.Sprintf("Failed to fetch %s: %v", s.def.Table, err))
		return
	}
	s.rows = rows
}

// Create validates and inserts draft. On success the add dialog closes and
// the screen reloads; on failure the dialog stays open with the draft.
func (s *Screen[T]) Create(ctx context.Context, draft entity.Draft) error {
	return s.submit(ctx, draft, "add", "Added", func(row T) (T, error) {
		return s.src.Insert(ctx, row)
	}, func(d *Dialogs) **Form { return &d.Add }, 0)
}

// Update overwrites record id with draft, targeting the edit dialog.
func (s *Screen[T]) Update(ctx context.Context, id uint, draft entity.Draft) error {
	return s.submit(ctx, draft, "update", "Updated", func(row T) (T, error) {
		return s.src.Update(ctx, id, row)
	}, func(d *Dialogs) **Form { return &d.Edit }, id)
}

// Remove deletes record id, targeting the delete dialog. A failure leaves the
// delete dialog open on id even when the row is no longer loaded.
func (s *Screen[T]) Remove(ctx context.Context, id uint) error {
	s.mu.Lock()
	epoch := s.epoch
	var subject string
	if row, ok := s.find(id); ok {
		subject = s.def.SubjectOf(row)
	}
	s.mu.Unlock()

	err := s.src.Delete(ctx, id)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		if s.dialogs.Delete == nil || s.dialogs.Delete.ID != id {
			s.dialogs.Delete = &Form{ID: id, Draft: entity.Draft{}}
		}
		s.failed("delete", err)
		s.mu.Unlock()
		return err
	}
	s.dialogs.Delete = nil
	if subject == "" {
		subject = fmt.Sprintf("%s #%d", s.def.Name, id)
	}
	s.notify(LevelSuccess, s.def.Name+" Deleted", subject+" has been deleted successfully.")
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *Screen[T]) submit(
	ctx context.Context,
	draft entity.Draft,
	action, done string,
	write func(T) (T, error),
	dialog func(*Dialogs) **Form,
	id uint,
) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	keep := func(err error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.epoch {
			return err
		}
		*dialog(&s.dialogs) = &Form{ID: id, Draft: draft.Clone()}
		s.failed(action, err)
		return err
	}

	if err := s.def.Validate(draft); err != nil {
		return keep(err)
	}
	row, err := s.def.Decode(draft)
	if err != nil {
		return keep(err)
	}
	saved, err := write(row)
	if err != nil {
		return keep(err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return nil
	}
	*dialog(&s.dialogs) = nil
	s.notify(LevelSuccess, s.def.Name+" "+done, s.def.SubjectOf(saved)+" has been "+strings.ToLower(done)+" successfully.")
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

// failed must be called with mu held.
func (s *Screen[T]) failed(action string, err error) {
	s.logger.Error(action+" failed", zap.Error(err))
	s.notify(LevelError, "Error", fmt.Sprintf("Failed to %s %s: %v", action, s.def.Noun(), err))
}

func (s *Screen[T]) notify(level Level, title, msg string) {
	s.notes = append(s.notes, Notification{Level: level, Title: title, Message: msg, At: time.Now()})
}

// Search filters the loaded collection without touching the store.
func (s *Screen[T]) Search(query string) []T {
	s.mu.Lock()
	rows := append([]T(nil), s.rows...)
	s.mu.Unlock()
	return s.def.Search(rows, query)
}

// Rows returns a copy of the loaded collection.
func (s *Screen[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.rows...)
}

// OpenAdd opens the add dialog with a draft seeded from field defaults.
func (s *Screen[T]) OpenAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs.Add = &Form{Draft: s.def.NewDraft()}
}

// OpenEdit opens the edit dialog for a loaded row. It reports false when the
// row is not in the collection.
func (s *Screen[T]) OpenEdit(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.find(id)
	if !ok {
		return false
	}
	s.dialogs.Edit = &Form{ID: id, Draft: s.def.DraftOf(row)}
	return true
}

func (s *Screen[T]) OpenDelete(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.find(id)
	if !ok {
		return false
	}
	s.dialogs.Delete = &Form{ID: id, Draft: s.def.DraftOf(row)}
	return true
}

// Close closes every dialog.
func (s *Screen[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs = Dialogs{}
}

func (s *Screen[T]) Dialogs() Dialogs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogs.clone()
}

// TakeNotifications returns and clears the pending notifications.
func (s *Screen[T]) TakeNotifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.notes
	s.notes = nil
	return notes
}

// find must be called with mu held.
func (s *Screen[T]) find(id uint) (T, bool) {
	for _, r := range s.rows {
		if r.Key() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}
