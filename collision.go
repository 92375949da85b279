package main

// ColliderSource tags what a collider belongs to
type ColliderSource byte

const (
	SourcePlayer        ColliderSource = 'p'
	SourceChunk         ColliderSource = 'c'
	SourceDestroyedTile ColliderSource = 'h'
	SourceRocket        ColliderSource = 'r'
)

// Collider is an axis-aligned box centered on Pos
type Collider struct {
	Pos     Vec2
	Width   float64
	Height  float64
	Source  ColliderSource
	MatchID string
	Player  *Player // set for player colliders
}

// IsOverlapping checks whether two boxes overlap. Touching edges count.
func IsOverlapping(a, b *Collider) bool {
	if b.Pos.X+b.Width/2 < a.Pos.X-a.Width/2 || b.Pos.X-b.Width/2 > a.Pos.X+a.Width/2 {
		return false
	}
	return b.Pos.Y-b.Height/2 <= a.Pos.Y+a.Height/2 && b.Pos.Y+b.Height/2 >= a.Pos.Y-a.Height/2
}

// CollisionIndex is the per-match list of live colliders.
// Iteration order is registration order.
type CollisionIndex struct {
	colliders []*Collider
}

// Register appends c to the index
func (ci *CollisionIndex) Register(c *Collider) {
	ci.colliders = append(ci.colliders, c)
}

// Remove deletes c by identity. Colliders with equal geometry are untouched.
func (ci *CollisionIndex) Remove(c *Collider) bool {
	for i, other := range ci.colliders {
		if other == c {
			copy(ci.colliders[i:], ci.colliders[i+1:])
			ci.colliders[len(ci.colliders)-1] = nil
			ci.colliders = ci.colliders[:len(ci.colliders)-1]
			return true
		}
	}
	return false
}

// Contains reports whether c is registered
func (ci *CollisionIndex) Contains(c *Collider) bool {
	for _, other := range ci.colliders {
		if other == c {
			return true
		}
	}
	return false
}

// Len returns the number of registered colliders
func (ci *CollisionIndex) Len() int {
	return len(ci.colliders)
}

// Touching returns every other collider overlapping self, in registration order
func (ci *CollisionIndex) Touching(self *Collider) []*Collider {
	var out []*Collider
	for _, c := range ci.colliders {
		if c != self && IsOverlapping(self, c) {
			out = append(out, c)
		}
	}
	return out
}

// NearestTouching returns the overlapping collider of the given source whose
// center is closest to self. Equal distances keep registration order.
func (ci *CollisionIndex) NearestTouching(self *Collider, src ColliderSource, skip func(*Collider) bool) *Collider {
	var best *Collider
	bestDist := 0.0
	for _, c := range ci.colliders {
		if c == self || c.Source != src || !IsOverlapping(self, c) {
			continue
		}
		if skip != nil && skip(c) {
			continue
		}
		d := Distance(self.Pos, c.Pos)
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
