package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForClients(t *testing.T, hub *Hub, userID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.clients[userID])
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("user %d never reached %d live clients", userID, want)
}

func TestHub_UnregisterTwiceKeepsSiblingAlive(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := &Client{Hub: hub, UserID: 7, Send: make(chan []byte, 4)}
	second := &Client{Hub: hub, UserID: 7, Send: make(chan []byte, 4)}
	hub.Register(first)
	hub.Register(second)
	waitForClients(t, hub, 7, 2)

	// The read pump teardown and a full-buffer drop can both unregister the
	// same client; the second pass must not close the channel again.
	hub.Unregister(first)
	hub.Unregister(first)
	waitForClients(t, hub, 7, 1)

	hub.NotifySessionRefresh(7)
	select {
	case msg, ok := <-second.Send:
		require.True(t, ok)
		assert.Contains(t, string(msg), "session_refresh")
	case <-time.After(2 * time.Second):
		t.Fatal("surviving client received no message")
	}

	// The removed client's channel was closed exactly once.
	select {
	case _, ok := <-first.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("removed client channel was never closed")
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{Hub: hub, UserID: 3, Send: make(chan []byte, 1)}
	healthy := &Client{Hub: hub, UserID: 3, Send: make(chan []byte, 16)}
	hub.Register(slow)
	hub.Register(healthy)
	waitForClients(t, hub, 3, 2)

	hub.NotifyOrderUpdate(3, 12, "confirmed")
	// The second update overflows the slow client's buffer and drops it.
	hub.NotifyOrderUpdate(3, 12, "ready")
	waitForClients(t, hub, 3, 1)

	for _, want := range []string{"confirmed", "ready"} {
		select {
		case msg := <-healthy.Send:
			assert.Contains(t, string(msg), want)
		case <-time.After(2 * time.Second):
			t.Fatalf("healthy client never received %q", want)
		}
	}

	// The slow client keeps what was buffered, then its channel closes.
	msg, ok := <-slow.Send
	require.True(t, ok)
	assert.Contains(t, string(msg), "confirmed")
	_, ok = <-slow.Send
	assert.False(t, ok)
}
