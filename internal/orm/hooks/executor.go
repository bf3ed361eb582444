// Package hooks runs schema lifecycle hooks around document operations.
// Hooks run one at a time in registration order; each one holds its phase
// until it calls next.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/odm/internal/orm/schema"
)

// DefaultTimeout bounds how long a hook may hold its phase before calling next
const DefaultTimeout = 10 * time.Second

// ErrHookTimeout is returned when a hook never calls next
var ErrHookTimeout = errors.New("hook did not call next before timeout")

// HookError wraps a failure of a single hook
type HookError struct {
	Hook  string
	Index int
	Err   error
}

// Error implements the error interface
func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook #%d failed: %v", e.Hook, e.Index, e.Err)
}

// Unwrap returns the underlying error
func (e *HookError) Unwrap() error {
	return e.Err
}

// Executor executes lifecycle hooks for documents
type Executor struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecutor creates a new hook executor. A zero timeout means hooks may
// hold their phase until the caller's context ends.
func NewExecutor(timeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		timeout: timeout,
		logger:  logger,
	}
}

// Timeout returns the per-hook timeout
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Run executes the schema's hooks for one phase of an operation
func (e *Executor) Run(
	ctx context.Context,
	s *schema.Schema,
	phase schema.Phase,
	operation string,
	doc schema.Instance,
) error {
	return e.RunHooks(ctx, s.Hooks(phase, operation), doc)
}

// RunHooks executes hooks in order, stopping at the first failure
func (e *Executor) RunHooks(ctx context.Context, hooks []*schema.Hook, doc schema.Instance) error {
	for i, hook := range hooks {
		if err := e.runHook(ctx, hook, doc); err != nil {
			e.logger.Debug("hook failed",
				zap.String("hook", hook.String()),
				zap.Int("index", i),
				zap.Error(err),
			)
			return &HookError{Hook: hook.String(), Index: i, Err: err}
		}
	}
	return nil
}

// runHook calls one hook and waits for its continuation. The timeout
// starts once the hook function returns, so it bounds a next called
// asynchronously; a hook that blocks before returning is not interrupted.
func (e *Executor) runHook(ctx context.Context, hook *schema.Hook, doc schema.Instance) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	var once sync.Once
	next := func(err error) {
		once.Do(func() {
			done <- err
		})
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				next(fmt.Errorf("panic in hook: %v", r))
			}
		}()
		hook.Fn(doc, next)
	}()

	// a hook that already called next wins over a cancelled context
	select {
	case err := <-done:
		return err
	default:
	}

	var timeout <-chan time.Time
	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		e.logger.Warn("hook timed out",
			zap.String("hook", hook.String()),
			zap.Duration("timeout", e.timeout),
		)
		return ErrHookTimeout
	}
}
