package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubRegisterUnregisterCount(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.ClientCount())

	first := &Client{ID: "c1", UserID: "uid-1"}
	second := &Client{ID: "c2", UserID: "uid-2"}
	hub.Register(first)
	hub.Register(second)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Unregister(first)
	assert.Equal(t, 1, hub.ClientCount())

	// Unregistering twice is a no-op
	hub.Unregister(first)
	assert.Equal(t, 1, hub.ClientCount())
}
