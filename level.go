package main

import (
	"math/rand/v2"
	"strings"
)

// Level is the chunk layout of one match plus the tiles destroyed so far.
// The layout is fixed after creation; the destroyed set only grows.
type Level struct {
	Chunks []GridPos `json:"chunks"`

	destroyed     map[GridPos]struct{}
	destroyedList []GridPos
}

// NewLevel creates a level from a chunk list
func NewLevel(chunks []GridPos) *Level {
	return &Level{
		Chunks:    append([]GridPos(nil), chunks...),
		destroyed: make(map[GridPos]struct{}),
	}
}

// ParseLevel builds a level from a row-major character grid where '#' marks
// a chunk. Leading and trailing blank lines are ignored.
func ParseLevel(layout string) *Level {
	lines := strings.Split(strings.Trim(layout, "\n"), "\n")
	var chunks []GridPos
	for y, line := range lines {
		for x, c := range line {
			if x >= LevelWidth {
				break
			}
			if c == '#' {
				chunks = append(chunks, GridPos{X: x, Y: y})
			}
		}
	}
	return NewLevel(chunks)
}

// Tiles returns every tile coordinate of the level, chunk by chunk, row-major
func (l *Level) Tiles() []GridPos {
	tiles := make([]GridPos, 0, len(l.Chunks)*ChunkSize*ChunkSize)
	for _, chunk := range l.Chunks {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				tiles = append(tiles, GridPos{X: chunk.X*ChunkSize + x, Y: chunk.Y*ChunkSize + y})
			}
		}
	}
	return tiles
}

// MarkDestroyed records a tile as destroyed. Returns false if it already was.
func (l *Level) MarkDestroyed(t GridPos) bool {
	if _, ok := l.destroyed[t]; ok {
		return false
	}
	l.destroyed[t] = struct{}{}
	l.destroyedList = append(l.destroyedList, t)
	return true
}

// IsDestroyed reports whether a tile has been destroyed
func (l *Level) IsDestroyed(t GridPos) bool {
	_, ok := l.destroyed[t]
	return ok
}

// Destroyed returns destroyed tiles in destruction order
func (l *Level) Destroyed() []GridPos {
	return append([]GridPos(nil), l.destroyedList...)
}

// levelCatalog holds the hand-authored layouts. Every layout has at least
// MaxPlayers chunks so each player gets a spawn chunk.
var levelCatalog = []string{
	`
###
##
`,
	`
##
###
`,
	`
###
# #
###
`,
	`
 #
###
 #
`,
	`
# #
###
`,
}

// LevelManager picks layouts from the catalog
type LevelManager struct {
	levels []*Level
	rng    *rand.Rand
}

// NewLevelManager parses the catalog. A nil rng uses a randomly seeded one.
func NewLevelManager(rng *rand.Rand) *LevelManager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lm := &LevelManager{rng: rng}
	for _, layout := range levelCatalog {
		lm.levels = append(lm.levels, ParseLevel(layout))
	}
	return lm
}

// RandomLevel returns a fresh copy of a uniformly chosen layout
func (lm *LevelManager) RandomLevel() *Level {
	l := lm.levels[lm.rng.IntN(len(lm.levels))]
	return NewLevel(l.Chunks)
}

// Len returns the catalog size
func (lm *LevelManager) Len() int {
	return len(lm.levels)
}
