package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "getAttribs|heroes|42", Key("getAttribs", "heroes", "42"))
	assert.Equal(t, "health|", Key("health", ""))
}

func TestGetSetDelete(t *testing.T) {
	c := New[int]("test", 8, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c := New[string]("test", 8, 20*time.Millisecond)
	c.Set("a", "x")

	_, ok := c.Get("a")
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestPurgeByPrefix(t *testing.T) {
	c := New[int]("test", 16, time.Minute)
	c.Set(Key("balanceOf", "moh", "0xaaa"), 1)
	c.Set(Key("balanceOf", "moh", "0xbbb"), 2)
	c.Set(Key("balanceOf", "medallc", "0xaaa"), 3)

	removed := c.Purge(Key("balanceOf", "moh"))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(Key("balanceOf", "medallc", "0xaaa"))
	assert.True(t, ok)
}

func TestPurgeAll(t *testing.T) {
	c := New[int]("test", 16, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	removed := c.Purge("")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, c.Len())
}

func TestSizeBound(t *testing.T) {
	c := New[int]("test", 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	// oldest entry evicted first
	_, ok := c.Get("a")
	assert.False(t, ok)
}
