package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Where is an equality filter keyed by column name.
type Where map[string]any

// Repo provides find/create/update/delete operations for one entity type.
// Include names are gorm association names (e.g. "Profile", "Posts").
type Repo[T any] struct {
	db *gorm.DB
}

func newRepo[T any](db *gorm.DB) *Repo[T] {
	return &Repo[T]{db: db}
}

func (r *Repo[T]) query(ctx context.Context, include []string) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, rel := range include {
		q = q.Preload(rel)
	}
	return q
}

// FindUnique returns the record with the given primary key, or ErrNotFound.
func (r *Repo[T]) FindUnique(ctx context.Context, id string, include ...string) (*T, error) {
	var rec T
	err := r.query(ctx, include).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", id, err)
	}
	return &rec, nil
}

// FindMany returns all records matching where (all records when where is
// empty), in insertion order.
func (r *Repo[T]) FindMany(ctx context.Context, where Where, include ...string) ([]*T, error) {
	q := r.query(ctx, include)
	if len(where) > 0 {
		q = q.Where(map[string]any(where))
	}

	recs := []*T{}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("find many: %w", err)
	}
	return recs, nil
}

// Create inserts rec. Associations set on rec are not written.
func (r *Repo[T]) Create(ctx context.Context, rec *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// Update sets the given columns on the record with the given primary key
// and returns the updated record. Returns ErrNotFound if no row matched.
func (r *Repo[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindUnique(ctx, id)
}

// Delete removes the record with the given primary key.
// Returns ErrNotFound if no row matched.
func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every record matching where and returns how many were
// removed. An empty filter is rejected rather than wiping the table.
func (r *Repo[T]) DeleteMany(ctx context.Context, where Where) (int64, error) {
	if len(where) == 0 {
		return 0, errors.New("delete many: filter is required")
	}
	res := r.db.WithContext(ctx).Where(map[string]any(where)).Delete(new(T))
	if res.Error != nil {
		return 0, fmt.Errorf("delete many: %w", res.Error)
	}
	return res.RowsAffected, nil
}
