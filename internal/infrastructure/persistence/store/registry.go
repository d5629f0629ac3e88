package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Opener opens the database behind a store name.
type Opener interface {
	Open(ctx context.Context, storeName string) (*gorm.DB, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, storeName string) (*gorm.DB, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, storeName string) (*gorm.DB, error) {
	return f(ctx, storeName)
}

// OpenHook runs once on every newly opened connection before it is cached.
// An error discards the connection.
type OpenHook func(conn *Connection) error

// CloseHook runs after a connection is closed and evicted.
type CloseHook func(conn *Connection)

// Observer receives registry lifecycle events.
type Observer interface {
	StoreOpened(ctx context.Context, storeName string, elapsed time.Duration, err error)
	StoreClosed(storeName string)
}

// Registry caches one Connection per store name. Stores are opened lazily
// on first use and concurrent first uses share a single open.
type Registry struct {
	prefix      string
	opener      Opener
	observer    Observer
	openTimeout time.Duration

	mu      sync.RWMutex
	conns   map[string]*Connection
	onOpen  []OpenHook
	onClose []CloseHook

	group singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver reports opens and closes to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// WithOpenTimeout bounds a single store open. Zero means no bound.
func WithOpenTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.openTimeout = d
	}
}

// WithOpenHook registers h for every new connection.
func WithOpenHook(h OpenHook) Option {
	return func(r *Registry) {
		r.onOpen = append(r.onOpen, h)
	}
}

// NewRegistry returns an empty registry naming stores <prefix>_<tenant>.
func NewRegistry(prefix string, opener Opener, opts ...Option) *Registry {
	r := &Registry{
		prefix: prefix,
		opener: opener,
		conns:  make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the store name prefix.
func (r *Registry) Prefix() string {
	return r.prefix
}

// OnOpen registers a hook for connections opened from now on.
func (r *Registry) OnOpen(h OpenHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onOpen = append(r.onOpen, h)
}

// OnClose registers a hook run after each close.
func (r *Registry) OnClose(h CloseHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClose = append(r.onClose, h)
}

// StoreName returns the store name for tenantID.
func (r *Registry) StoreName(tenantID string) (string, error) {
	return StoreName(r.prefix, tenantID)
}

// MainStoreName returns the name of the cross-tenant store.
func (r *Registry) MainStoreName() string {
	return MainStoreName(r.prefix)
}

// GetConnection returns the cached connection of tenantID, opening it on
// first use.
func (r *Registry) GetConnection(ctx context.Context, tenantID string) (*Connection, error) {
	name, err := r.StoreName(tenantID)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, name, tenantID)
}

// GetMainConnection returns the connection of the cross-tenant store.
func (r *Registry) GetMainConnection(ctx context.Context) (*Connection, error) {
	return r.get(ctx, r.MainStoreName(), "")
}

func (r *Registry) lookup(name string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[name]
	return conn, ok
}

func (r *Registry) get(ctx context.Context, name, tenantID string) (*Connection, error) {
	if conn, ok := r.lookup(name); ok {
		return conn, nil
	}

	// The shared open outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := r.group.DoChan(name, func() (any, error) {
		if conn, ok := r.lookup(name); ok {
			return conn, nil
		}
		openCtx := context.WithoutCancel(ctx)
		if r.openTimeout > 0 {
			var cancel context.CancelFunc
			openCtx, cancel = context.WithTimeout(openCtx, r.openTimeout)
			defer cancel()
		}
		return r.open(openCtx, name, tenantID)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("open store %s: %w", name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Connection), nil
	}
}

func (r *Registry) open(ctx context.Context, name, tenantID string) (*Connection, error) {
	start := time.Now()
	db, err := r.opener.Open(ctx, name)
	if err == nil && db == nil {
		err = errors.New("opener returned no database")
	}
	if err != nil {
		err = fmt.Errorf("open store %s: %w", name, err)
		r.observeOpen(ctx, name, start, err)
		return nil, err
	}

	conn := &Connection{Name: name, TenantID: tenantID, DB: db}

	r.mu.RLock()
	hooks := append([]OpenHook(nil), r.onOpen...)
	r.mu.RUnlock()
	for _, h := range hooks {
		if err := h(conn); err != nil {
			_ = conn.Close()
			err = fmt.Errorf("prepare store %s: %w", name, err)
			r.observeOpen(ctx, name, start, err)
			return nil, err
		}
	}

	r.mu.Lock()
	r.conns[name] = conn
	r.mu.Unlock()
	r.observeOpen(ctx, name, start, nil)
	return conn, nil
}

func (r *Registry) observeOpen(ctx context.Context, name string, start time.Time, err error) {
	if r.observer != nil {
		r.observer.StoreOpened(ctx, name, time.Since(start), err)
	}
}

// CloseConnection closes and evicts the connection of tenantID. Closing a
// store that is not open is a no-op.
func (r *Registry) CloseConnection(tenantID string) error {
	name, err := r.StoreName(tenantID)
	if err != nil {
		return err
	}
	return r.closeByName(name)
}

// CloseMainConnection closes and evicts the main store connection.
func (r *Registry) CloseMainConnection() error {
	return r.closeByName(r.MainStoreName())
}

func (r *Registry) closeByName(name string) error {
	r.mu.Lock()
	conn, ok := r.conns[name]
	delete(r.conns, name)
	hooks := append([]CloseHook(nil), r.onClose...)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return r.finishClose(conn, hooks)
}

func (r *Registry) finishClose(conn *Connection, hooks []CloseHook) error {
	err := conn.Close()
	for _, h := range hooks {
		h(conn)
	}
	if r.observer != nil {
		r.observer.StoreClosed(conn.Name)
	}
	if err != nil {
		return fmt.Errorf("close store %s: %w", conn.Name, err)
	}
	return nil
}

// CloseAllConnections closes and evicts every connection. Individual close
// errors are joined.
func (r *Registry) CloseAllConnections() error {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Connection)
	hooks := append([]CloseHook(nil), r.onClose...)
	r.mu.Unlock()

	var errs []error
	for _, conn := range conns {
		if err := r.finishClose(conn, hooks); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of open connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Names returns the sorted names of open stores.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// PingAll pings every open store and returns the failures by name.
func (r *Registry) PingAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	failures := make(map[string]error)
	for _, conn := range conns {
		if err := conn.Ping(ctx); err != nil {
			failures[conn.Name] = err
		}
	}
	return failures
}
