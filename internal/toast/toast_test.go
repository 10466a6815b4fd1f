package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedQueue(d time.Duration, at time.Time) *Queue {
	q := NewQueue(d)
	q.now = func() time.Time { return at }
	return q
}

func TestPushNewestFirst(t *testing.T) {
	q := NewQueue(0)
	a := q.Push(Success, "saved")
	b := q.Push(Error, "failed")

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
	assert.NotEqual(t, a.ID, b.ID)

	latest, ok := q.Latest()
	require.True(t, ok)
	assert.Equal(t, "failed", latest.Text)
}

func TestDefaultDuration(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, DefaultDuration, q.Push(Info, "x").Duration)

	q = NewQueue(2 * time.Second)
	assert.Equal(t, 2*time.Second, q.Push(Info, "x").Duration)
	assert.Equal(t, time.Second, q.Push(Info, "x", Options{Duration: time.Second}).Duration)
}

func TestExpire(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	q := fixedQueue(4*time.Second, start)
	q.Push(Info, "short", Options{Duration: time.Second})
	q.Push(Info, "default")
	q.Push(Error, "sticky", Options{Persist: true})

	assert.Equal(t, 0, q.Expire(start.Add(500*time.Millisecond)))
	assert.Equal(t, 1, q.Expire(start.Add(time.Second)))
	assert.Equal(t, 1, q.Expire(start.Add(time.Hour)))

	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "sticky", items[0].Text)
	assert.True(t, items[0].ExpiresAt().IsZero())
}

func TestDismiss(t *testing.T) {
	q := NewQueue(0)
	sticky := q.Push(Error, "sticky", Options{Persist: true})
	q.Push(Info, "other")

	assert.True(t, q.Dismiss(sticky.ID))
	assert.False(t, q.Dismiss(sticky.ID))
	assert.Equal(t, 1, q.Len())

	q.DismissAll()
	_, ok := q.Latest()
	assert.False(t, ok)
}

func TestItemsIsACopy(t *testing.T) {
	q := NewQueue(0)
	q.Push(Info, "a")
	items := q.Items()
	items[0].Text = "changed"
	latest, _ := q.Latest()
	assert.Equal(t, "a", latest.Text)
}
