package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/agenda/internal/model"
	"github.com/sadopc/agenda/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

var alice = model.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func TestStartsAnonymous(t *testing.T) {
	s := New(newStore(t))
	assert.False(t, s.Authenticated())
	assert.Equal(t, "", s.Token())
	assert.Equal(t, int64(0), s.UserID())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestBeginPersistsAndRestores(t *testing.T) {
	st := newStore(t)
	s := New(st)
	require.NoError(t, s.Begin(alice, "opaque-token"))
	assert.True(t, s.Authenticated())
	assert.Equal(t, int64(1), s.UserID())

	again := New(st)
	ok, err := again.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	u, _ := again.User()
	assert.Equal(t, alice, u)
	assert.Equal(t, "opaque-token", again.Token())
}

func TestBeginRejectsIncompleteLogin(t *testing.T) {
	s := New(newStore(t))
	assert.ErrorIs(t, s.Begin(alice, ""), ErrInvalidLogin)
	assert.ErrorIs(t, s.Begin(model.User{Username: "x"}, "t"), ErrInvalidLogin)
	assert.False(t, s.Authenticated())
}

func TestEndClearsBothKeys(t *testing.T) {
	st := newStore(t)
	s := New(st)
	require.NoError(t, s.Begin(alice, "t"))
	require.NoError(t, s.End())

	assert.False(t, s.Authenticated())
	_, err := st.GetValue(KeyUser)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = st.GetValue(KeyToken)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	// Idempotent.
	assert.NoError(t, s.End())
}

func TestRestoreDropsExpiredJWT(t *testing.T) {
	st := newStore(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	s := New(st)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Begin(alice, signed(t, now.Add(-time.Minute))))

	again := New(st)
	again.now = func() time.Time { return now }
	ok, err := again.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, again.Authenticated())

	_, err = st.GetValue(KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRestoreKeepsLiveJWT(t *testing.T) {
	st := newStore(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, New(st).Begin(alice, signed(t, now.Add(time.Hour))))

	s := New(st)
	s.now = func() time.Time { return now }
	ok, err := s.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRestorePartialRecord(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.SetValue(KeyToken, "orphan"))

	s := New(st)
	ok, err := s.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = st.GetValue(KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound, "orphan token should be cleared")
}

func TestRestoreCorruptUser(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.SetValues(map[string]string{KeyUser: "{not json", KeyToken: "t"}))

	ok, err := New(st).Restore()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, Expired(signed(t, now.Add(-time.Second)), now))
	assert.False(t, Expired(signed(t, now.Add(time.Second)), now))
	assert.False(t, Expired("not-a-jwt", now))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, Expired(noExp, now))
}

func TestConcurrentAccess(t *testing.T) {
	s := New(newStore(t))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Begin(alice, "t")
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
			_ = s.Authenticated()
		}()
	}
	wg.Wait()
}
