package domain

import (
	"context"

	"github.com/kompox/webstack/domain/model"
)

// OutputRepository stores and retrieves stack outputs keyed by (stack, key).
type OutputRepository interface {
	// Put creates or replaces the output identified by o.Stack and o.Key.
	Put(ctx context.Context, o *model.StackOutput) error
	Get(ctx context.Context, stack, key string) (*model.StackOutput, error)
	List(ctx context.Context, stack string) ([]*model.StackOutput, error)
	// DeleteStack removes every output of stack.
	DeleteStack(ctx context.Context, stack string) error
}
