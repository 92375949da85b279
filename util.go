package main

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Vec2 is a point or direction in world space
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Len returns the euclidean length of v
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance returns the distance between two points
func Distance(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// Lerp interpolates between a and b by t
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{X: (1-t)*a.X + t*b.X, Y: (1-t)*a.Y + t*b.Y}
}

// GridPos addresses a chunk or a tile on the integer grid
type GridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ChunkWorldPos returns the world-space center of a chunk
func ChunkWorldPos(c GridPos) Vec2 {
	return Vec2{X: float64(c.X) * TotalChunkSize, Y: float64(c.Y) * TotalChunkSize}
}

// tileCenterOffset shifts a chunk's tile grid so it is centered on the chunk
const tileCenterOffset = TileSize * float64(ChunkSize-1) / 2

// TileWorldPos returns the world-space center of a tile
func TileWorldPos(t GridPos) Vec2 {
	return Vec2{
		X: float64(t.X)*TileSize - tileCenterOffset,
		Y: float64(t.Y)*TileSize - tileCenterOffset,
	}
}

// GenerateID returns a new random identifier
func GenerateID() string {
	return uuid.NewString()
}

// sanitizeName trims a player name and cuts it to maxNameLen runes
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}
