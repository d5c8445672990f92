package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kompox/webstack/domain"
	"github.com/kompox/webstack/domain/model"
)

var _ domain.OutputRepository = (*OutputRepository)(nil)

// OutputRepository is a thread-safe in-memory implementation.
type OutputRepository struct {
	mu    sync.RWMutex
	items map[string]*model.StackOutput
	seq   int64
}

func NewOutputRepository() *OutputRepository {
	return &OutputRepository{items: make(map[string]*model.StackOutput)}
}

func (r *OutputRepository) nextID() string {
	r.seq++
	return fmt.Sprintf("out-%d-%d", time.Now().UnixNano(), r.seq)
}

func outputKey(stack, key string) string { return stack + "\x00" + key }

func (r *OutputRepository) Put(_ context.Context, o *model.StackOutput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	k := outputKey(o.Stack, o.Key)
	if prev, ok := r.items[k]; ok {
		o.ID = prev.ID
		o.CreatedAt = prev.CreatedAt
	} else {
		if o.ID == "" {
			o.ID = r.nextID()
		}
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	cp := *o
	r.items[k] = &cp
	return nil
}

func (r *OutputRepository) Get(_ context.Context, stack, key string) (*model.StackOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[outputKey(stack, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", model.ErrOutputNotFound, stack, key)
	}
	cp := *v
	return &cp, nil
}

func (r *OutputRepository) List(_ context.Context, stack string) ([]*model.StackOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.StackOutput, 0, len(r.items))
	for _, v := range r.items {
		if v.Stack != stack {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *OutputRepository) DeleteStack(_ context.Context, stack string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.items {
		if v.Stack == stack {
			delete(r.items, k)
		}
	}
	return nil
}
