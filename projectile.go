package main

const (
	RocketSpeed             = 12.0
	RocketSize              = 20.0
	MaxRocketLifetime       = 60 // projectile ticks
	RocketHitKnockbackForce = 5.0
	ExplosionRadius         = 38.0

	// the arena is drawn in perspective, so vertical travel is foreshortened
	rocketVerticalScale = 0.75
)

// Rocket is a projectile in flight. It lives until it hits a player or its
// lifetime runs out, and explodes exactly once.
type Rocket struct {
	ID       uint32
	Pos      Vec2
	Dir      Vec2
	Lifetime int
	Owner    *Player

	collider *Collider
	target   *Player // player hit, if any
	exploded bool
	game     *Game
}

// Tick advances the rocket by one projectile tick
func (r *Rocket) Tick() {
	if r.exploded {
		return
	}
	if r.Lifetime < MaxRocketLifetime {
		r.Lifetime++
		r.move()
	}
	if !r.exploded && r.Lifetime >= MaxRocketLifetime {
		r.Explode()
	}
}

func (r *Rocket) move() {
	r.Pos = r.Pos.Add(Vec2{
		X: r.Dir.X * RocketSpeed,
		Y: r.Dir.Y * RocketSpeed * rocketVerticalScale,
	})
	r.collider.Pos = r.Pos

	hit := r.game.index.NearestTouching(r.collider, SourcePlayer, func(c *Collider) bool {
		return c.Player == nil || c.Player == r.Owner || !c.Player.Alive
	})
	if hit == nil {
		return
	}
	hor := DirLeft
	if r.Dir.X > 0 {
		hor = DirRight
	}
	vert := DirNone
	if r.Dir.Y > 0 {
		vert = DirDown
	} else if r.Dir.Y < 0 {
		vert = DirUp
	}
	r.target = hit.Player
	hit.Player.Knockback(RocketHitKnockbackForce, hor, vert)
	r.game.track(StatRocketHit)
	r.Explode()
}

// Explode destroys every solid tile within ExplosionRadius of the rocket,
// without warning, and removes the rocket. A player it hit is left to the
// death check of its knockback. Calling it again does nothing.
func (r *Rocket) Explode() {
	if r.exploded {
		return
	}
	r.exploded = true
	g := r.game
	g.index.Remove(r.collider)
	delete(g.rockets, r.ID)

	for _, t := range g.solidTilesNear(r.Pos, ExplosionRadius) {
		g.destroyTile(t, true)
	}
	g.broadcast(EvtRocketExplode, r.ID)
	g.checkFalls(r.target)
}
