package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kompox/webstack/domain"
	"github.com/kompox/webstack/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutputRepository struct{ db *gorm.DB }

func NewOutputRepository(db *gorm.DB) *OutputRepository { return &OutputRepository{db: db} }

func outputToRecord(o *model.StackOutput) *OutputRecord {
	return &OutputRecord{ID: o.ID, Stack: o.Stack, Key: o.Key, Value: o.Value, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt}
}
func outputToModel(r *OutputRecord) *model.StackOutput {
	return &model.StackOutput{ID: r.ID, Stack: r.Stack, Key: r.Key, Value: r.Value, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Put inserts the output or updates the value of the existing (stack, key) row.
func (r *OutputRepository) Put(ctx context.Context, o *model.StackOutput) error {
	now := time.Now().UTC()
	rec := outputToRecord(o)
	if rec.ID == "" {
		rec.ID = "out-" + uuid.NewString()
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stack"}, {Name: "output_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return err
	}
	stored, err := r.Get(ctx, o.Stack, o.Key)
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

func (r *OutputRepository) Get(ctx context.Context, stack, key string) (*model.StackOutput, error) {
	var rec OutputRecord
	if err := r.db.WithContext(ctx).First(&rec, "stack = ? AND output_key = ?", stack, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", model.ErrOutputNotFound, stack, key)
		}
		return nil, err
	}
	return outputToModel(&rec), nil
}

func (r *OutputRepository) List(ctx context.Context, stack string) ([]*model.StackOutput, error) {
	var recs []OutputRecord
	if err := r.db.WithContext(ctx).Where("stack = ?", stack).Order("output_key ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.StackOutput, 0, len(recs))
	for i := range recs {
		out = append(out, outputToModel(&recs[i]))
	}
	return out, nil
}

func (r *OutputRepository) DeleteStack(ctx context.Context, stack string) error {
	return r.db.WithContext(ctx).Delete(&OutputRecord{}, "stack = ?", stack).Error
}

var _ domain.OutputRepository = (*OutputRepository)(nil)
