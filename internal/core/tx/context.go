package tx

import (
	"context"
	"errors"
)

type managerKey struct{}

// ErrNoManager is returned when no transaction manager was attached to the context.
var ErrNoManager = errors.New("transaction manager not found in context")

// WithManager stores the transaction manager in context.
func WithManager(ctx context.Context, m ReadOnlyManager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext retrieves the transaction manager from context.
func FromContext(ctx context.Context) (ReadOnlyManager, error) {
	m, ok := ctx.Value(managerKey{}).(ReadOnlyManager)
	if !ok || m == nil {
		return nil, ErrNoManager
	}
	return m, nil
}

// MustFromContext retrieves the transaction manager or panics.
// Use in places where a missing manager is a programming error.
func MustFromContext(ctx context.Context) ReadOnlyManager {
	m, err := FromContext(ctx)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// RunReadOnly executes fn in a read-only transaction when a manager is present,
// so that every read in fn sees the same snapshot. Without a manager fn runs directly.
func RunReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m, err := FromContext(ctx)
	if err != nil {
		return fn(ctx)
	}
	return m.ReadOnly(ctx, fn)
}
