package inject

import (
	"context"
	"errors"

	"github.com/rcliao/lorebook/internal/model"
)

// HookFunc runs right before a generation request.
type HookFunc func(ctx context.Context, history []model.Message) error

// Hook is the list of callbacks fired before each generation.
type Hook struct {
	fns []HookFunc
}

// Register appends fn. Callbacks fire in registration order.
func (h *Hook) Register(fn HookFunc) {
	h.fns = append(h.fns, fn)
}

// Fire runs every callback, even after a failure, and joins their errors.
func (h *Hook) Fire(ctx context.Context, history []model.Message) error {
	var errs []error
	for _, fn := range h.fns {
		if err := fn(ctx, history); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
