package main

import "math"

const (
	PlayerSpeed        = 6.2 // world units per move command
	PlayerHitboxWidth  = 42.0
	PlayerHitboxHeight = 70.0
	PlayerVertOffset   = 15.0 // hitbox sits above the position point

	HandrocketKnockbackForce = 3.0
	RocketSpawnOffset        = 6.0

	onTopTolerance         = 10.0
	knockbackScale         = 10.0
	verticalKnockbackScale = 0.65
	holeEdgeGrace          = 0.1 // fraction of the hitbox a hole must cover past its edge
)

// Player is one registered participant of a match. It is only touched from
// the owning match goroutine.
type Player struct {
	ID       string
	Name     string
	Pos      Vec2
	Facing   Facing
	Aim      AimAngle
	Alive    bool
	CanShoot bool

	collider  *Collider
	lastChunk *Collider
	game      *Game
}

// NewPlayer creates a player that has not spawned yet
func NewPlayer(id, name string, g *Game) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Facing:   FacingLeft,
		Aim:      AimMiddle,
		Alive:    true,
		CanShoot: true,
		game:     g,
	}
}

// spawn places the player at pos and registers its hitbox
func (p *Player) spawn(pos Vec2) {
	p.Pos = pos
	p.collider = &Collider{
		Width:   PlayerHitboxWidth,
		Height:  PlayerHitboxHeight,
		Source:  SourcePlayer,
		MatchID: p.game.ID,
		Player:  p,
	}
	p.syncCollider()
	p.game.index.Register(p.collider)
	p.lastChunk = p.game.index.NearestTouching(p.collider, SourceChunk, nil)
}

func (p *Player) syncCollider() {
	if p.collider == nil {
		return
	}
	p.collider.Pos = Vec2{X: p.Pos.X, Y: p.Pos.Y - PlayerVertOffset}
}

// releaseCollider removes the hitbox from the match index
func (p *Player) releaseCollider() {
	if p.collider == nil {
		return
	}
	p.game.index.Remove(p.collider)
	p.collider = nil
}

// resolveDirection returns dir when nothing blocks it. When another player's
// hitbox overlaps ours, the nearest one decides: a move toward it is turned
// into the opposite direction, which callers treat as blocked.
func (p *Player) resolveDirection(dir Direction) Direction {
	if p.collider == nil {
		return dir
	}
	other := p.game.index.NearestTouching(p.collider, SourcePlayer, nil)
	if other == nil {
		return dir
	}
	self := p.collider.Pos
	if dir.Horizontal() {
		onTop := math.Abs(self.Y-other.Pos.Y)-onTopTolerance <= PlayerHitboxHeight/2
		if !onTop {
			return dir
		}
		if self.X >= other.Pos.X {
			return DirRight
		}
		return DirLeft
	}
	onSide := math.Abs(self.X-other.Pos.X) <= PlayerHitboxWidth/2
	if !onSide {
		return dir
	}
	if self.Y >= other.Pos.Y {
		return DirDown
	}
	return DirUp
}

func unitVector(dir Direction) Vec2 {
	switch dir {
	case DirUp:
		return Vec2{Y: -1}
	case DirDown:
		return Vec2{Y: 1}
	case DirLeft:
		return Vec2{X: -1}
	case DirRight:
		return Vec2{X: 1}
	}
	return Vec2{}
}

// Move steps the player one PlayerSpeed in dir unless another player blocks
// it, then checks whether the new position is still on the map.
func (p *Player) Move(dir Direction) {
	if !p.Alive || !dir.Valid() {
		return
	}
	if p.resolveDirection(dir) != dir {
		return
	}
	p.Pos = p.Pos.Add(unitVector(dir).Scale(PlayerSpeed))
	p.syncCollider()
	p.game.broadcast(EvtMove, PlayerMoveMsg{SocketID: p.ID, Pos: p.Pos})
	p.checkDeath()
}

// Knockback pushes the player by force along each given axis. Axes blocked
// by another player stay put. The death check runs a short while later so
// the push can be seen before the fall.
func (p *Player) Knockback(force float64, hor, vert Direction) {
	if !p.Alive {
		return
	}
	next := p.Pos
	if hor.Horizontal() && p.resolveDirection(hor) == hor {
		next.X += unitVector(hor).X * knockbackScale * force
	}
	if vert == DirUp || vert == DirDown {
		if p.resolveDirection(vert) == vert {
			next.Y += unitVector(vert).Y * knockbackScale * force * verticalKnockbackScale
		}
	}
	p.Pos = next
	p.syncCollider()
	p.game.broadcast(EvtMove, PlayerMoveMsg{SocketID: p.ID, Pos: p.Pos})
	p.game.after(SettleTicks, p.checkDeath)
}

// IsWithinMap reports whether the player stands on solid ground. onFront is
// meaningful only when the player is off the map: it is true when they left
// past the near (bottom) edge of the last chunk they stood on.
func (p *Player) IsWithinMap() (within, onFront bool) {
	if p.collider == nil {
		return false, false
	}
	// while straddling chunks the nearest one counts as the one stood on
	if c := p.game.index.NearestTouching(p.collider, SourceChunk, nil); c != nil {
		within = true
		p.lastChunk = c
	}
	if !within {
		if p.lastChunk != nil {
			onFront = p.Pos.Y > p.lastChunk.Pos.Y+p.lastChunk.Height/2
		}
		return false, onFront
	}
	for _, c := range p.game.index.Touching(p.collider) {
		if c.Source == SourceDestroyedTile && p.standsOver(c) {
			return false, false
		}
	}
	return true, false
}

// standsOver reports whether the hitbox center lies inside hole, leaving a
// small grace margin at the hole's edges.
func (p *Player) standsOver(hole *Collider) bool {
	center := p.collider.Pos
	gx := p.collider.Width * holeEdgeGrace / 2
	gy := p.collider.Height * holeEdgeGrace / 2
	clearLeft := center.X < hole.Pos.X-hole.Width/2+gx
	clearRight := center.X > hole.Pos.X+hole.Width/2-gx
	clearAbove := center.Y < hole.Pos.Y-hole.Height/2+gy
	clearBelow := center.Y > hole.Pos.Y+hole.Height/2-gy
	return !(clearLeft || clearRight || clearAbove || clearBelow)
}

func (p *Player) checkDeath() {
	if !p.Alive {
		return
	}
	if within, onFront := p.IsWithinMap(); !within {
		p.Die(onFront)
	}
}

// Die eliminates the player and lets the match evaluate the winner
func (p *Player) Die(fellOffFront bool) {
	if !p.eliminate(fellOffFront) {
		return
	}
	p.game.checkWinner()
}

// eliminate marks the player dead without evaluating the match outcome.
// It returns false if the player was already dead.
func (p *Player) eliminate(fellOffFront bool) bool {
	if !p.Alive {
		return false
	}
	p.Alive = false
	p.releaseCollider()
	p.game.broadcast(EvtPlayerDied, PlayerDiedMsg{SocketID: p.ID, FellOffFront: fellOffFront})
	p.game.track(StatPlayerDied)
	p.game.log().WithField("player", p.ID).WithField("front", fellOffFront).Debug("player eliminated")
	return true
}

// disconnect removes a player whose connection went away
func (p *Player) disconnect() {
	p.Alive = false
	p.releaseCollider()
}

// FireRocket launches a rocket along the current aim and pushes the shooter
// back the opposite way. It is a no-op during the cooldown.
func (p *Player) FireRocket() {
	if !p.Alive || !p.CanShoot {
		return
	}
	p.CanShoot = false
	p.game.after(ShootCooldownTicks, func() { p.CanShoot = true })

	var dir Vec2
	hor := DirRight
	if p.Facing == FacingRight {
		dir.X = 1
		hor = DirLeft
	} else {
		dir.X = -1
	}
	vert := DirNone
	switch p.Aim {
	case AimUp:
		dir.Y = -1
		vert = DirDown
	case AimDown:
		dir.Y = 1
		vert = DirUp
	}
	dir = dir.Normalize()

	rocket := p.game.spawnRocket(p, p.Pos.Add(dir.Scale(RocketSpawnOffset)), dir)
	p.Knockback(HandrocketKnockbackForce, hor, vert)
	p.game.broadcast(EvtRocketShot, RocketShotMsg{
		OwnerSocketID: p.ID,
		Direction:     dir,
		Pos:           rocket.Pos,
		InstanceID:    rocket.ID,
	})
	p.game.track(StatRocketFired)
}
