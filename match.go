package main

import "time"

// MatchPhase represents the lifecycle of a lobby. Filling is not a distinct
// phase: capacity is checked synchronously on each registration.
type MatchPhase int32

const (
	PhaseOpen   MatchPhase = 0
	PhaseActive MatchPhase = 1
	PhaseClosed MatchPhase = 2
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseActive:
		return "active"
	default:
		return "closed"
	}
}

const (
	MaxPlayers       = 2
	MaxActiveLobbies = 5
	maxNameLen       = 16
)

// Arena geometry
const (
	TileSize       = 60.0
	ChunkSize      = 4 // tiles per chunk side
	TotalChunkSize = TileSize * ChunkSize
	LevelWidth     = 3 // chunks per level row
)

// Timing. Delays are expressed in ticks of the match loop.
const (
	TickDuration       = 25 * time.Millisecond
	DestroyTileTicks   = 40
	ProjectileTicks    = 1
	TileWarningTicks   = uint64(2000 * time.Millisecond / TickDuration)
	ShootCooldownTicks = uint64(600 * time.Millisecond / TickDuration)
	SettleTicks        = uint64((35*time.Millisecond + TickDuration - 1) / TickDuration)
)

// MatchConfig holds the tunables of one match
type MatchConfig struct {
	MaxPlayers       int
	TickDuration     time.Duration
	DestroyTileTicks uint64
	ProjectileTicks  uint64
}

// DefaultConfig returns the standard elimination match config
func DefaultConfig() MatchConfig {
	return MatchConfig{
		MaxPlayers:       MaxPlayers,
		TickDuration:     TickDuration,
		DestroyTileTicks: DestroyTileTicks,
		ProjectileTicks:  ProjectileTicks,
	}
}
