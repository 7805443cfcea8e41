package store

import (
	"context"
	"errors"
	"fmt"

	"factory-admin/internal/feed"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Record is implemented by every entity model through models.Base.
type Record interface {
	Key() uint
}

// Table is the row store client for one backing table. Every confirmed
// write is published to the change feed.
type Table[T Record] struct {
	db    *gorm.DB
	name  string
	order string
	feed  feed.Publisher
}

// NewTable binds T to table name. order is the stable list ordering, e.g. "id asc".
// pub may be nil.
func NewTable[T Record](db *gorm.DB, name, order string, pub feed.Publisher) *Table[T] {
	if order == "" {
		order = "id asc"
	}
	return &Table[T]{db: db, name: name, order: order, feed: pub}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := t.db.WithContext(ctx).Table(t.name).Order(t.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *Table[T]) Get(ctx context.Context, id uint) (T, error) {
	var row T
	err := t.db.WithContext(ctx).Table(t.name).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	if err != nil {
		return row, fmt.Errorf("get %s %d: %w", t.name, id, err)
	}
	return row, nil
}

// Insert stores row and returns it with the store-assigned id and created_at.
func (t *Table[T]) Insert(ctx context.Context, row T) (T, error) {
	if row.Key() != 0 {
		return row, fmt.Errorf("insert into %s: id is assigned by the store", t.name)
	}
	if err := t.db.WithContext(ctx).Table(t.name).Create(&row).Error; err != nil {
		return row, fmt.Errorf("insert into %s: %w", t.name, err)
	}
	t.publish(feed.ActionInsert, row.Key())
	return row, nil
}

// Update overwrites every column of row id with patch except id and created_at.
func (t *Table[T]) Update(ctx context.Context, id uint, patch T) (T, error) {
	res := t.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(&patch)
	if res.Error != nil {
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", t.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	t.publish(feed.ActionUpdate, id)
	return t.Get(ctx, id)
}

func (t *Table[T]) Delete(ctx context.Context, id uint) error {
	res := t.db.WithContext(ctx).Table(t.name).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", t.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	t.publish(feed.ActionDelete, id)
	return nil
}

func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.WithContext(ctx).Table(t.name).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

func (t *Table[T]) publish(action feed.Action, id uint) {
	if t.feed == nil {
		return
	}
	t.feed.Publish(feed.Change{Table: t.name, Action: action, ID: id})
}
