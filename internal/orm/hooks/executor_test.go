package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/odm/internal/orm/schema"
)

func newSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Fields{"name": schema.String}, nil)
	require.NoError(t, err)
	return s
}

func TestRunOrder(t *testing.T) {
	s := newSchema(t)
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
			order = append(order, i)
			next(nil)
		})
	}
	s.Post(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		order = append(order, 99)
		next(nil)
	})

	exec := NewExecutor(time.Second, nil)
	require.NoError(t, exec.Run(context.Background(), s, schema.Pre, schema.OpSave, nil))
	assert.Equal(t, []int{1, 2, 3}, order)

	require.NoError(t, exec.Run(context.Background(), s, schema.Post, schema.OpSave, nil))
	assert.Equal(t, []int{1, 2, 3, 99}, order)
}

func TestRunWaitsForAsyncNext(t *testing.T) {
	s := newSchema(t)
	var finished atomic.Bool
	var secondSawFinished atomic.Bool

	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			next(nil)
		}()
	})
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		secondSawFinished.Store(finished.Load())
		next(nil)
	})

	exec := NewExecutor(time.Second, nil)
	require.NoError(t, exec.Run(context.Background(), s, schema.Pre, schema.OpSave, nil))
	assert.True(t, secondSawFinished.Load())
}

func TestNextIsIdempotent(t *testing.T) {
	s := newSchema(t)
	calls := 0
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		next(nil)
		next(errors.New("ignored"))
		next(nil)
	})
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		calls++
		next(nil)
	})

	exec := NewExecutor(time.Second, nil)
	require.NoError(t, exec.Run(context.Background(), s, schema.Pre, schema.OpSave, nil))
	assert.Equal(t, 1, calls)
}

func TestErrorAbortsChain(t *testing.T) {
	s := newSchema(t)
	boom := errors.New("boom")
	reached := false

	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) { next(nil) })
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) { next(boom) })
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		reached = true
		next(nil)
	})

	exec := NewExecutor(time.Second, nil)
	err := exec.Run(context.Background(), s, schema.Pre, schema.OpSave, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached)

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, 1, hookErr.Index)
	assert.Equal(t, "pre save", hookErr.Hook)
	assert.Equal(t, "pre save hook #1 failed: boom", hookErr.Error())
}

func TestPanicBecomesError(t *testing.T) {
	s := newSchema(t)
	s.Pre(schema.OpValidate, func(doc schema.Instance, next schema.Next) {
		panic("kaboom")
	})

	exec := NewExecutor(time.Second, nil)
	err := exec.Run(context.Background(), s, schema.Pre, schema.OpValidate, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in hook: kaboom")
}

func TestTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newSchema(t)
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {})

	exec := NewExecutor(20*time.Millisecond, zap.New(core))
	assert.Equal(t, 20*time.Millisecond, exec.Timeout())

	err := exec.Run(context.Background(), s, schema.Pre, schema.OpSave, nil)
	assert.ErrorIs(t, err, ErrHookTimeout)
	assert.Equal(t, 1, logs.FilterMessage("hook timed out").Len())
}

func TestContextCancellation(t *testing.T) {
	s := newSchema(t)
	s.Pre(schema.OpRemove, func(doc schema.Instance, next schema.Next) {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	exec := NewExecutor(0, nil)
	err := exec.Run(ctx, s, schema.Pre, schema.OpRemove, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCancelledContextSkipsHooks(t *testing.T) {
	s := newSchema(t)
	var calls atomic.Int32
	s.Pre(schema.OpSave, func(doc schema.Instance, next schema.Next) {
		calls.Add(1)
		next(nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewExecutor(time.Second, nil)
	err := exec.Run(ctx, s, schema.Pre, schema.OpSave, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCompletedHookWinsOverCancellation(t *testing.T) {
	exec := NewExecutor(time.Second, nil)

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		hook := &schema.Hook{
			Phase:     schema.Pre,
			Operation: schema.OpSave,
			Fn: func(doc schema.Instance, next schema.Next) {
				cancel()
				next(nil)
			},
		}

		require.NoError(t, exec.RunHooks(ctx, []*schema.Hook{hook}, nil))
		cancel()
	}
}

func TestRunNoHooks(t *testing.T) {
	exec := NewExecutor(DefaultTimeout, nil)
	assert.NoError(t, exec.Run(context.Background(), newSchema(t), schema.Pre, schema.OpInit, nil))
}
