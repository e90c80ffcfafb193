package requestlog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAssignsIDs(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(&Entry{Method: "GET", URL: "http://x/a", Timestamp: time.Now()})

	entries := store.List()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		store.Log(&Entry{URL: fmt.Sprintf("http://x/%d", i)})
	}

	entries := store.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "http://x/2", entries[0].URL)
	assert.Equal(t, "http://x/4", entries[2].URL)
	assert.Equal(t, 3, store.Count())
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(0)
	store.Log(&Entry{URL: "http://x/a"})
	require.Equal(t, 1, store.Count())

	store.Clear()
	assert.Zero(t, store.Count())
}

func TestMemoryStoreIgnoresNil(t *testing.T) {
	store := NewMemoryStore(1)
	store.Log(nil)
	assert.Zero(t, store.Count())
}

func TestHashContent(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashContent(nil))

	a := HashContent([]byte("body a"))
	b := HashContent([]byte("body b"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}
