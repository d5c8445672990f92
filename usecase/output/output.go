package output

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain"
	"github.com/kompox/webstack/domain/model"
)

// Repos holds repositories needed for output use cases.
type Repos struct {
	Output domain.OutputRepository
}

// UseCase reads values exported by successful runs.
type UseCase struct {
	Repos *Repos
}

// GetInput identifies one output.
type GetInput struct {
	Stack string `json:"stack"`
	Key   string `json:"key"`
}

// GetOutput wraps the stored value.
type GetOutput struct {
	Output *model.StackOutput `json:"output"`
}

// Get returns one output. A missing key yields model.ErrOutputNotFound.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.Stack == "" || in.Key == "" {
		return nil, fmt.Errorf("GetInput.Stack and Key are required")
	}
	o, err := u.Repos.Output.Get(ctx, in.Stack, in.Key)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Output: o}, nil
}

// ListInput selects the stack whose outputs are listed.
type ListInput struct {
	Stack string `json:"stack"`
}

// ListOutput holds outputs sorted by key.
type ListOutput struct {
	Outputs []*model.StackOutput `json:"outputs"`
}

// List returns every output of a stack.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.Stack == "" {
		return nil, fmt.Errorf("ListInput.Stack is required")
	}
	items, err := u.Repos.Output.List(ctx, in.Stack)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Outputs: items}, nil
}
