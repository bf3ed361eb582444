// Package model turns schemas into registered, persistable models. A
// Connection is the model registry: it maps unique names to models and
// binds them to a document store.
package model

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/odm/internal/orm/hooks"
	"github.com/conduit-lang/odm/internal/orm/schema"
	"github.com/conduit-lang/odm/internal/orm/store"
)

// ErrModelExists is returned when a model name is already registered
var ErrModelExists = errors.New("model is already registered")

// Connection manages the models registered against one store
type Connection struct {
	store    store.Store
	models   map[string]*Model
	executor *hooks.Executor
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Option configures a Connection
type Option func(*connectionConfig)

type connectionConfig struct {
	logger      *zap.Logger
	hookTimeout time.Duration
	openOptions store.OpenOptions
}

// WithLogger sets the connection logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *connectionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHookTimeout bounds how long a hook may hold its phase
func WithHookTimeout(d time.Duration) Option {
	return func(c *connectionConfig) {
		c.hookTimeout = d
	}
}

// WithOpenOptions tunes how Dial opens its store
func WithOpenOptions(opts store.OpenOptions) Option {
	return func(c *connectionConfig) {
		c.openOptions = opts
	}
}

func newConfig(opts []Option) *connectionConfig {
	cfg := &connectionConfig{
		logger:      zap.NewNop(),
		hookTimeout: hooks.DefaultTimeout,
		openOptions: store.DefaultOpenOptions(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewConnection creates a model registry backed by a store
func NewConnection(st store.Store, opts ...Option) *Connection {
	cfg := newConfig(opts)
	return &Connection{
		store:    st,
		models:   make(map[string]*Model),
		executor: hooks.NewExecutor(cfg.hookTimeout, cfg.logger),
		logger:   cfg.logger,
	}
}

// Dial opens the store at rawURL and creates a connection on it
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Connection, error) {
	cfg := newConfig(opts)

	st, err := store.Open(ctx, rawURL, cfg.openOptions)
	if err != nil {
		return nil, err
	}

	cfg.logger.Info("store opened", zap.String("url", redactURL(rawURL)))
	return NewConnection(st, opts...), nil
}

// Model registers a schema under a unique name and returns the new model.
// The schema's init listeners fire once the model is registered.
func (c *Connection) Model(name string, s *schema.Schema) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("model name must not be empty")
	}
	if s == nil {
		return nil, fmt.Errorf("model %s: schema must not be nil", name)
	}

	m := newModel(c, name, s)

	c.mu.Lock()
	if _, exists := c.models[name]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrModelExists, name)
	}
	c.models[name] = m
	c.mu.Unlock()

	for staticName, value := range s.Statics() {
		m.DefineStatic(staticName, value)
	}
	s.NotifyInit(m)

	c.logger.Debug("model registered",
		zap.String("model", name),
		zap.String("collection", m.Collection()),
		zap.Int("paths", len(s.Paths())),
		zap.Int("hooks", len(s.AllHooks())),
	)

	return m, nil
}

// Lookup retrieves a model by name
func (c *Connection) Lookup(name string) (*Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.models[name]
	return m, ok
}

// ModelNames returns the registered model names, sorted
func (c *Connection) ModelNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store returns the connection's document store
func (c *Connection) Store() store.Store {
	return c.store
}

// Logger returns the connection's logger
func (c *Connection) Logger() *zap.Logger {
	return c.logger
}

// Ping checks the underlying store
func (c *Connection) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close closes the underlying store
func (c *Connection) Close() error {
	return c.store.Close()
}

var (
	defaultConn *Connection
	defaultMu   sync.Mutex
)

// Default returns the process-wide connection, backed by an in-memory store
// unless replaced with SetDefault
func Default() *Connection {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultConn == nil {
		defaultConn = NewConnection(store.NewMemoryStore())
	}
	return defaultConn
}

// SetDefault replaces the process-wide connection and returns the previous one
func SetDefault(c *Connection) *Connection {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	prev := defaultConn
	defaultConn = c
	return prev
}

// redactURL hides credentials before a store URL is logged. URLs without
// user info are returned as given.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	if u.User == nil {
		return raw
	}
	return u.Redacted()
}
