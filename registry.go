package main

import (
	"errors"
	"sync"
)

var (
	ErrCapacity      = errors.New("maximum number of active lobbies reached")
	ErrLobbyNotFound = errors.New("lobby not found")
)

// Registry tracks every live match by id. Matchmaking decisions are taken
// under one lock so two concurrent requests cannot both open the last slot.
type Registry struct {
	mu         sync.RWMutex
	games      map[string]*Game
	order      []string // creation order, oldest first
	maxLobbies int
	config     MatchConfig
	levels     *LevelManager
	analytics  *Analytics
}

// NewRegistry creates a registry allowing at most maxLobbies live matches
func NewRegistry(maxLobbies int, cfg MatchConfig, levels *LevelManager, analytics *Analytics) *Registry {
	if levels == nil {
		levels = NewLevelManager(nil)
	}
	return &Registry{
		games:      make(map[string]*Game),
		maxLobbies: maxLobbies,
		config:     cfg,
		levels:     levels,
		analytics:  analytics,
	}
}

// Open creates and starts a new lobby
func (r *Registry) Open() (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.games) >= r.maxLobbies {
		return nil, ErrCapacity
	}
	return r.openLocked(), nil
}

func (r *Registry) openLocked() *Game {
	g := NewGame(GenerateID(), r.config, r.levels.RandomLevel(), r, r.analytics)
	r.games[g.ID] = g
	r.order = append(r.order, g.ID)
	r.analytics.SetOpenLobbies(len(r.games))
	r.analytics.Track(StatLobbyOpen)
	g.log().WithField("chunks", len(g.level.Chunks)).Info("lobby opened")
	go g.Run()
	return g
}

// FindLobby returns the oldest lobby that still accepts players, opening a
// new one when none does. ErrCapacity means the server is full.
func (r *Registry) FindLobby() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if g := r.games[id]; g.Joinable() {
			return id, nil
		}
	}
	if len(r.games) >= r.maxLobbies {
		return "", ErrCapacity
	}
	return r.openLocked().ID, nil
}

// Lookup returns a registered match or ErrLobbyNotFound
func (r *Registry) Lookup(id string) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return g, nil
}

// Contains reports whether g is the match registered under id
func (r *Registry) Contains(id string, g *Game) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[id] == g
}

// Close forgets id if it still refers to g
func (r *Registry) Close(id string, g *Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.games[id] != g {
		return
	}
	delete(r.games, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.analytics.SetOpenLobbies(len(r.games))
}

// List returns info about all registered lobbies, oldest first
func (r *Registry) List() []LobbyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]LobbyInfo, 0, len(r.order))
	for _, id := range r.order {
		g := r.games[id]
		list = append(list, LobbyInfo{
			ID:      id,
			Players: g.PlayerCount(),
			State:   g.Phase().String(),
		})
	}
	return list
}

// Count returns the number of registered lobbies
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Shutdown stops every match and waits for their goroutines
func (r *Registry) Shutdown() {
	r.mu.RLock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()
	for _, g := range games {
		g.Stop()
	}
	for _, g := range games {
		<-g.Done()
	}
}
