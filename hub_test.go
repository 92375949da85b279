package main

import "testing"

func TestHubConnectionLimits(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < maxConnsPerIP; i++ {
		if !h.CanAccept("10.0.0.1") {
			t.Fatalf("connection %d should be accepted", i)
		}
		h.TrackConnect("10.0.0.1")
	}
	if h.CanAccept("10.0.0.1") {
		t.Error("per-IP limit should refuse further connections")
	}
	if !h.CanAccept("10.0.0.2") {
		t.Error("other addresses should still be accepted")
	}
	h.TrackDisconnect("10.0.0.1")
	if !h.CanAccept("10.0.0.1") {
		t.Error("a freed slot should be reusable")
	}
	if h.TotalConns() != maxConnsPerIP-1 {
		t.Errorf("expected %d tracked connections, got %d", maxConnsPerIP-1, h.TotalConns())
	}
}

func TestHubAttachToClosedLobby(t *testing.T) {
	h := NewHub(nil)
	g := newTestGame(t, quietConfig(), twoChunkLayout)
	go g.Run()
	g.Stop()
	<-g.Done()

	c := &Client{id: "c", done: make(chan struct{})}
	if err := h.Attach(g, c); err != ErrLobbyClosed {
		t.Errorf("expected ErrLobbyClosed, got %v", err)
	}
	if h.ClientCount() != 0 {
		t.Error("client should not be tracked")
	}
}
