package main

import (
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	StatLobbyOpen     = "lobby_open"
	StatLobbyClose    = "lobby_close"
	StatMatchStart    = "match_start"
	StatMatchEnd      = "match_end"
	StatPlayerJoin    = "player_join"
	StatPlayerDied    = "player_death"
	StatRocketFired   = "rocket_fired"
	StatRocketHit     = "rocket_hit"
	StatTileDestroyed = "tile_destroyed"
)

var statsFlushInterval = time.Second

// StatsSnapshot is the payload of /api/stats
type StatsSnapshot struct {
	Events          map[string]int64 `json:"events"`
	ConcurrentPeers int              `json:"concurrent_peers"`
	OpenLobbies     int              `json:"open_lobbies"`
	Uptime          string           `json:"uptime"`
}

// Analytics counts game events in the background so match goroutines never
// wait on it. Counts live in memory only.
type Analytics struct {
	events  chan string
	stop    chan struct{}
	wg      sync.WaitGroup
	started time.Time

	mu              sync.RWMutex
	counts          map[string]int64
	concurrentPeers int
	openLobbies     int
}

// NewAnalytics creates and starts the background aggregator
func NewAnalytics() *Analytics {
	a := &Analytics{
		events:  make(chan string, 1024),
		stop:    make(chan struct{}),
		started: time.Now(),
		counts:  make(map[string]int64),
	}
	a.wg.Add(1)
	go a.aggregate()
	return a
}

// Track enqueues an event (non-blocking)
func (a *Analytics) Track(evt string) {
	if a == nil {
		return
	}
	select {
	case a.events <- evt:
	default:
		// full, drop rather than stall a match
	}
}

// SetConcurrentPeers updates the connected-peers gauge
func (a *Analytics) SetConcurrentPeers(n int) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.concurrentPeers = n
	a.mu.Unlock()
}

// SetOpenLobbies updates the registered-lobbies gauge
func (a *Analytics) SetOpenLobbies(n int) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.openLobbies = n
	a.mu.Unlock()
}

// Snapshot returns a copy of the current counters and gauges
func (a *Analytics) Snapshot() StatsSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	events := make(map[string]int64, len(a.counts))
	for k, v := range a.counts {
		events[k] = v
	}
	return StatsSnapshot{
		Events:          events,
		ConcurrentPeers: a.concurrentPeers,
		OpenLobbies:     a.openLobbies,
		Uptime:          time.Since(a.started).Round(time.Second).String(),
	}
}

// Stop flushes queued events and shuts the aggregator down
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

func (a *Analytics) aggregate() {
	defer a.wg.Done()

	batch := make([]string, 0, 64)
	ticker := time.NewTicker(statsFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(batch []string) {
	if len(batch) == 0 {
		return
	}
	a.mu.Lock()
	for _, evt := range batch {
		a.counts[evt]++
	}
	a.mu.Unlock()
}
