package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civix-be/models"
	"civix-be/repository"
)

// flakyStore serves a fixed issue set and can be switched into failure mode.
type flakyStore struct {
	mu     sync.Mutex
	issues []models.Issue
	fail   bool
	calls  int
}

func (s *flakyStore) List(_ context.Context, _ repository.Filter) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	out := make([]models.Issue, len(s.issues))
	copy(out, s.issues)
	return out, nil
}

func (s *flakyStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testUser() models.User {
	return models.User{ID: primitive.NewObjectID(), Name: "Asha", Contact: "9900011122", Role: models.Citizen, WardNumber: "Ward 7"}
}

func newTestCache(t *testing.T, store Store) *Cache {
	t.Helper()
	cache, err := NewCache(store, NewMemoryStorage(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return cache
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	store := &flakyStore{issues: []models.Issue{{ID: primitive.NewObjectID(), Status: models.Pending}}}
	cache := newTestCache(t, store)

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, cache.Issues(), 1)

	store.issues = append(store.issues, models.Issue{ID: primitive.NewObjectID(), Status: models.Escalated})
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, cache.Issues(), 2)
}

func TestFailedRefreshKeepsPriorSnapshot(t *testing.T) {
	store := &flakyStore{issues: []models.Issue{{ID: primitive.NewObjectID(), Status: models.Pending}}}
	cache := newTestCache(t, store)

	require.NoError(t, cache.Refresh(context.Background()))
	before := cache.LastRefresh()

	store.fail = true
	err := cache.Refresh(context.Background())
	require.Error(t, err)

	// Stale but consistent until the next successful refresh.
	assert.Len(t, cache.Issues(), 1)
	assert.Equal(t, before, cache.LastRefresh())
}

func TestLoginPersistsIdentityAcrossRestart(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	store := &flakyStore{}

	cache, err := NewCache(store, storage, zap.NewNop().Sugar())
	require.NoError(t, err)
	_, ok := cache.User()
	assert.False(t, ok)

	user := testUser()
	require.NoError(t, cache.Login(user))

	// Simulate a reload: a fresh cache over the same storage.
	reloaded, err := NewCache(store, storage, zap.NewNop().Sugar())
	require.NoError(t, err)
	got, ok := reloaded.User()
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Contact, got.Contact)
}

func TestLogoutClearsIdentityAndSnapshotButKeepsPrefs(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	store := &flakyStore{issues: []models.Issue{{ID: primitive.NewObjectID()}}}

	cache, err := NewCache(store, storage, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, cache.Login(testUser()))
	require.NoError(t, cache.SetTheme("dark"))
	require.NoError(t, cache.SetLanguage("kn"))
	require.NoError(t, cache.Refresh(context.Background()))

	require.NoError(t, cache.Logout())

	_, ok := cache.User()
	assert.False(t, ok)
	assert.Empty(t, cache.Issues())

	reloaded, err := NewCache(store, storage, zap.NewNop().Sugar())
	require.NoError(t, err)
	_, ok = reloaded.User()
	assert.False(t, ok)
	assert.Equal(t, Prefs{Theme: "dark", Language: "kn"}, reloaded.Prefs())
}

func TestBackgroundRefreshLoop(t *testing.T) {
	store := &flakyStore{issues: []models.Issue{{ID: primitive.NewObjectID()}}}
	cache := newTestCache(t, store)
	cache.SetInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache.Start(ctx)
	assert.Eventually(t, func() bool { return store.callCount() >= 3 }, time.Second, 5*time.Millisecond)
	cache.Close()

	settled := store.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, store.callCount())
}

func TestCorruptStateFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	storage := NewFileStorage(path)
	require.NoError(t, storage.Save(State{Prefs: Prefs{Theme: "light"}}))

	state, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "light", state.Prefs.Theme)

	missing := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))
	state, err = missing.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, state)
}
