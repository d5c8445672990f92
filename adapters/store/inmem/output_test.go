package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/kompox/webstack/domain/model"
)

func TestOutputRepository(t *testing.T) {
	ctx := context.Background()
	r := NewOutputRepository()

	if err := r.Put(ctx, &model.StackOutput{Stack: "web", Key: "hostname", Value: "a.example.com"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	first, err := r.Get(ctx, "web", "hostname")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("Get() = %+v, want ID and CreatedAt set", first)
	}

	if err := r.Put(ctx, &model.StackOutput{Stack: "web", Key: "hostname", Value: "b.example.com"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	second, _ := r.Get(ctx, "web", "hostname")
	if second.Value != "b.example.com" || second.ID != first.ID {
		t.Errorf("Put() did not replace in place: %+v", second)
	}

	_ = r.Put(ctx, &model.StackOutput{Stack: "web", Key: "edgeAddress", Value: "203.0.113.1"})
	_ = r.Put(ctx, &model.StackOutput{Stack: "other", Key: "hostname", Value: "x"})
	list, err := r.List(ctx, "web")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Key != "edgeAddress" || list[1].Key != "hostname" {
		t.Errorf("List() = %+v", list)
	}

	if err := r.DeleteStack(ctx, "web"); err != nil {
		t.Fatalf("DeleteStack() error = %v", err)
	}
	if _, err := r.Get(ctx, "web", "hostname"); !errors.Is(err, model.ErrOutputNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if _, err := r.Get(ctx, "other", "hostname"); err != nil {
		t.Errorf("other stack removed: %v", err)
	}
}
