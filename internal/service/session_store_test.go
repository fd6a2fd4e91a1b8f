package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	id := store.Open(7)
	assert.True(t, store.Active(id, 7))
	assert.False(t, store.Active(id, 8), "session is bound to its user")
	assert.False(t, store.Active("unknown", 7))

	store.Close(id)
	assert.False(t, store.Active(id, 7))

	// Closing again is harmless.
	store.Close(id)
}

func TestSessionStoreCloseAll(t *testing.T) {
	store := NewSessionStore()

	a := store.Open(7)
	b := store.Open(7)
	other := store.Open(9)

	store.CloseAll(7)
	assert.False(t, store.Active(a, 7))
	assert.False(t, store.Active(b, 7))
	assert.True(t, store.Active(other, 9))
}
