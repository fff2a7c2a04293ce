// Package session holds a client's authenticated identity and a periodically
// refreshed local copy of the issue set. The cache is an explicit object with
// defined init (from persisted state) and teardown (logout clears it), never
// an ambient singleton. It is a pull-based mirror of store state: no
// optimistic mutation, and a failed refresh leaves the previous snapshot in
// place until the next successful one.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"civix-be/models"
	"civix-be/repository"
)

// Store is the read side of the issue repository the cache polls.
type Store interface {
	List(ctx context.Context, filter repository.Filter) ([]models.Issue, error)
}

// RefreshInterval is the default snapshot poll cadence.
const RefreshInterval = 30 * time.Second

// Cache is the client session state object.
type Cache struct {
	store    Store
	storage  Storage
	log      *zap.SugaredLogger
	interval time.Duration

	mu          sync.RWMutex
	user        *models.User
	prefs       Prefs
	issues      []models.Issue
	lastRefresh time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

// NewCache constructs a cache over the given store and durable storage,
// restoring any persisted identity and preferences.
func NewCache(store Store, storage Storage, log *zap.SugaredLogger) (*Cache, error) {
	state, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Cache{
		store:    store,
		storage:  storage,
		log:      log,
		interval: RefreshInterval,
		user:     state.User,
		prefs:    state.Prefs,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// SetInterval overrides the poll cadence. Call before Start.
func (c *Cache) SetInterval(d time.Duration) {
	c.interval = d
}

// Start begins the background refresh loop. An immediate refresh runs first
// so views have data before the first tick.
func (c *Cache) Start(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warnw("initial issue refresh failed", "error", err)
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	go c.loop(ctx)
}

func (c *Cache) loop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				// Transient failures degrade to a stale view; the
				// next tick retries.
				c.log.Warnw("issue refresh failed", "error", err)
			}
		}
	}
}

// Close stops the refresh loop. Safe to call on a cache that never started.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if started {
		<-c.done
	}
}

// Refresh pulls the full issue set and replaces the snapshot. On failure the
// previous snapshot is kept unchanged. Lifecycle actions call this directly
// after their request resolves, out of band of the timer.
func (c *Cache) Refresh(ctx context.Context) error {
	issues, err := c.store.List(ctx, repository.Filter{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.issues = issues
	c.lastRefresh = time.Now()
	c.mu.Unlock()
	return nil
}

// Issues returns a copy of the current snapshot.
func (c *Cache) Issues() []models.Issue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// LastRefresh reports when the snapshot was last replaced.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// User returns the authenticated identity, if any.
func (c *Cache) User() (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

// Login records and persists the authenticated identity.
func (c *Cache) Login(user models.User) error {
	c.mu.Lock()
	c.user = &user
	state := State{User: c.user, Prefs: c.prefs}
	c.mu.Unlock()
	return c.storage.Save(state)
}

// Logout is the session teardown: identity and snapshot are cleared and the
// persisted identity is wiped. Preferences survive.
func (c *Cache) Logout() error {
	c.mu.Lock()
	c.user = nil
	c.issues = nil
	state := State{Prefs: c.prefs}
	c.mu.Unlock()
	return c.storage.Save(state)
}

// Prefs returns the current display preferences.
func (c *Cache) Prefs() Prefs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// SetTheme persists the theme preference.
func (c *Cache) SetTheme(theme string) error {
	return c.updatePrefs(func(p *Prefs) { p.Theme = theme })
}

// SetLanguage persists the language preference.
func (c *Cache) SetLanguage(language string) error {
	return c.updatePrefs(func(p *Prefs) { p.Language = language })
}

func (c *Cache) updatePrefs(apply func(*Prefs)) error {
	c.mu.Lock()
	apply(&c.prefs)
	state := State{User: c.user, Prefs: c.prefs}
	c.mu.Unlock()
	return c.storage.Save(state)
}
