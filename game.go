package main

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const inboxSize = 256

var ErrLobbyClosed = errors.New("lobby closed")

// LobbyIdleTimeout closes an open lobby that nobody has connected to.
// Variable so tests can shorten it.
var LobbyIdleTimeout = 30 * time.Second

// Conn is the match's view of a client connection
//
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mock_conn_test.go -package=main . Conn
type Conn interface {
	Send(env Envelope)
	Close() error
}

// Commands posted to a match inbox
type (
	Join struct {
		ConnID string
		Conn   Conn
	}
	Register struct {
		ConnID string
		Name   string
	}
	Move struct {
		ConnID string
		Dir    Direction
	}
	AngleChange struct {
		ConnID string
		Angle  AimAngle
		Facing Facing
	}
	FireRocket struct {
		ConnID string
	}
	Leave struct {
		ConnID string
	}
)

// Game is one elimination match. All state below the atomics is owned by
// the goroutine running Run; other goroutines talk to it through Post.
type Game struct {
	ID        string
	config    MatchConfig
	registry  *Registry
	analytics *Analytics

	phase       atomic.Int32
	playerCount atomic.Int32

	inbox    chan any
	inboxMu  sync.RWMutex // Post holds it shared; exit drains under it exclusively
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	level      *Level
	conns      map[string]Conn
	players    map[string]*Player
	order      []string // registration order
	rockets    map[uint32]*Rocket
	nextRocket uint32
	index      CollisionIndex
	available  []GridPos
	scheduler  Scheduler
	ticks      uint64
	rng        *rand.Rand
	startedAt  time.Time
	winnerSent bool
}

// NewGame creates a match in the Open phase. registry and analytics may be nil.
func NewGame(id string, cfg MatchConfig, level *Level, registry *Registry, analytics *Analytics) *Game {
	return &Game{
		ID:        id,
		config:    cfg,
		registry:  registry,
		analytics: analytics,
		inbox:     make(chan any, inboxSize),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		level:     level,
		conns:     make(map[string]Conn),
		players:   make(map[string]*Player),
		rockets:   make(map[uint32]*Rocket),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Phase returns the current lifecycle phase
func (g *Game) Phase() MatchPhase {
	return MatchPhase(g.phase.Load())
}

// PlayerCount returns the number of registered players
func (g *Game) PlayerCount() int {
	return int(g.playerCount.Load())
}

// Joinable reports whether matchmaking may hand out this lobby
func (g *Game) Joinable() bool {
	return g.Phase() == PhaseOpen && g.PlayerCount() < g.config.MaxPlayers
}

// Done is closed once the match goroutine has exited
func (g *Game) Done() <-chan struct{} {
	return g.done
}

// Run is the match loop. The tick timer only exists while the match is Active.
func (g *Game) Run() {
	defer g.drainInbox()

	var ticker *time.Ticker
	var tickC <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()
	idle := time.NewTimer(LobbyIdleTimeout)
	defer idle.Stop()

	for {
		if g.Phase() == PhaseClosed {
			return
		}
		if tickC == nil && g.Phase() == PhaseActive {
			ticker = time.NewTicker(g.config.TickDuration)
			tickC = ticker.C
		}
		select {
		case <-g.quit:
			g.close()
			return
		case cmd := <-g.inbox:
			g.handleCommand(cmd)
		case <-tickC:
			g.step()
		case <-idle.C:
			if g.Phase() == PhaseOpen && len(g.conns) == 0 {
				g.log().Info("closing idle lobby")
				g.close()
			}
		}
	}
}

// Post hands a command to the match goroutine. It returns false once the
// match has stopped, and never blocks after that.
func (g *Game) Post(cmd any) bool {
	g.inboxMu.RLock()
	defer g.inboxMu.RUnlock()
	select {
	case <-g.done:
		return false
	default:
	}
	select {
	case g.inbox <- cmd:
		return true
	case <-g.done:
		return false
	}
}

// drainInbox marks the match goroutine as gone and closes connections whose
// Join was queued after the match closed, so they do not linger unattached.
func (g *Game) drainInbox() {
	close(g.done)
	g.inboxMu.Lock()
	defer g.inboxMu.Unlock()
	for {
		select {
		case cmd := <-g.inbox:
			if j, ok := cmd.(Join); ok {
				g.rejectJoin(j)
			}
		default:
			return
		}
	}
}

// rejectJoin closes a connection that arrived at a closed match
func (g *Game) rejectJoin(j Join) {
	g.log().WithField("conn", j.ConnID).Debug("join after close")
	if j.Conn != nil {
		j.Conn.Close()
	}
}

// Stop asks the match goroutine to close the match and exit
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.quit) })
}

func (g *Game) handleCommand(cmd any) {
	if g.Phase() == PhaseClosed {
		if j, ok := cmd.(Join); ok {
			g.rejectJoin(j)
		}
		return
	}
	switch c := cmd.(type) {
	case Join:
		g.handleJoin(c)
	case Register:
		g.handleRegister(c)
	case Move:
		if p := g.activePlayer(c.ConnID); p != nil {
			p.Move(c.Dir)
		}
	case AngleChange:
		g.handleAngleChange(c)
	case FireRocket:
		if p := g.activePlayer(c.ConnID); p != nil {
			p.FireRocket()
		}
	case Leave:
		g.handleLeave(c.ConnID)
	default:
		g.log().Warnf("unknown command %T", cmd)
	}
}

func (g *Game) activePlayer(connID string) *Player {
	if g.Phase() != PhaseActive {
		return nil
	}
	p := g.players[connID]
	if p == nil || !p.Alive {
		return nil
	}
	return p
}

func (g *Game) handleJoin(c Join) {
	g.conns[c.ConnID] = c.Conn
	g.log().WithField("conn", c.ConnID).Debug("connection joined")
}

func (g *Game) handleRegister(c Register) {
	conn, ok := g.conns[c.ConnID]
	if !ok {
		return
	}
	if _, exists := g.players[c.ConnID]; exists {
		return
	}
	if g.Phase() != PhaseOpen || len(g.players) >= g.config.MaxPlayers {
		g.log().WithField("conn", c.ConnID).Warn("registration refused, lobby full or started")
		delete(g.conns, c.ConnID)
		conn.Close()
		return
	}

	p := NewPlayer(c.ConnID, sanitizeName(c.Name), g)
	g.players[p.ID] = p
	g.order = append(g.order, p.ID)
	g.playerCount.Store(int32(len(g.players)))
	g.track(StatPlayerJoin)
	g.log().WithField("player", p.ID).WithField("name", p.Name).Info("player registered")

	conn.Send(Envelope{T: EvtID, Data: p.ID})
	if len(g.players) >= g.config.MaxPlayers {
		g.start()
		return
	}
	g.broadcast(EvtStartGame, StartGameMsg{Start: false})
}

// start spawns every player on its own chunk and begins ticking
func (g *Game) start() {
	for _, chunk := range g.level.Chunks {
		g.index.Register(&Collider{
			Pos:     ChunkWorldPos(chunk),
			Width:   TotalChunkSize,
			Height:  TotalChunkSize,
			Source:  SourceChunk,
			MatchID: g.ID,
		})
	}
	entries := make(map[string]PlayerEntry, len(g.players))
	for i, id := range g.order {
		p := g.players[id]
		p.spawn(ChunkWorldPos(g.level.Chunks[i%len(g.level.Chunks)]))
		entries[id] = PlayerEntry{Name: p.Name, Pos: p.Pos, Direction: p.Facing}
	}
	g.available = g.available[:0]
	for _, t := range g.level.Tiles() {
		if !g.level.IsDestroyed(t) {
			g.available = append(g.available, t)
		}
	}

	g.phase.Store(int32(PhaseActive))
	g.startedAt = time.Now()
	g.broadcast(EvtStartGame, StartGameMsg{
		Start:   true,
		Level:   &LevelData{Chunks: g.level.Chunks},
		Players: entries,
	})
	g.track(StatMatchStart)
	g.log().WithField("players", len(g.players)).Info("match started")
}

// step runs one match tick: due tasks, periodic tile destruction and
// projectile movement
func (g *Game) step() {
	if g.Phase() != PhaseActive {
		return
	}
	g.ticks++
	now := g.ticks

	g.scheduler.RunDue(now)
	if g.Phase() != PhaseActive {
		return
	}
	if g.config.DestroyTileTicks > 0 && now%g.config.DestroyTileTicks == 0 {
		g.destroyRandomTile()
	}
	if g.config.ProjectileTicks > 0 && now%g.config.ProjectileTicks == 0 {
		g.tickRockets()
	}
}

func (g *Game) tickRockets() {
	ids := make([]uint32, 0, len(g.rockets))
	for id := range g.rockets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if g.Phase() != PhaseActive {
			return
		}
		if r, ok := g.rockets[id]; ok {
			r.Tick()
		}
	}
}

// after schedules fn on the match clock. The task is dropped if the match
// has closed or is no longer the registered match for its id.
func (g *Game) after(delay uint64, fn func()) {
	g.scheduler.After(g.ticks, delay, func() {
		if !g.isOpen() {
			return
		}
		fn()
	})
}

func (g *Game) isOpen() bool {
	if g.Phase() == PhaseClosed {
		return false
	}
	return g.registry == nil || g.registry.Contains(g.ID, g)
}

func (g *Game) spawnRocket(owner *Player, pos, dir Vec2) *Rocket {
	g.nextRocket++
	r := &Rocket{
		ID:    g.nextRocket,
		Pos:   pos,
		Dir:   dir,
		Owner: owner,
		game:  g,
	}
	r.collider = &Collider{
		Pos:     pos,
		Width:   RocketSize,
		Height:  RocketSize,
		Source:  SourceRocket,
		MatchID: g.ID,
	}
	g.index.Register(r.collider)
	g.rockets[r.ID] = r
	return r
}

func (g *Game) destroyRandomTile() {
	if len(g.available) == 0 {
		return
	}
	t := g.available[g.rng.IntN(len(g.available))]
	g.destroyTile(t, false)
}

// destroyTile marks a tile destroyed and announces it. Instant tiles become
// holes right away; others after the warning delay, followed by a fall check.
// Callers destroying instantly run checkFalls themselves.
func (g *Game) destroyTile(t GridPos, instant bool) bool {
	if !g.level.MarkDestroyed(t) {
		return false
	}
	g.removeAvailable(t)
	g.broadcast(EvtTileDestroyed, TileDestroyedMsg{Pos: t, Instant: instant})
	g.track(StatTileDestroyed)
	if instant {
		g.registerHole(t)
		return true
	}
	g.after(TileWarningTicks, func() {
		g.registerHole(t)
		g.checkFalls()
	})
	return true
}

func (g *Game) registerHole(t GridPos) {
	g.index.Register(&Collider{
		Pos:     TileWorldPos(t),
		Width:   TileSize,
		Height:  TileSize,
		Source:  SourceDestroyedTile,
		MatchID: g.ID,
	})
}

func (g *Game) removeAvailable(t GridPos) {
	for i, a := range g.available {
		if a == t {
			g.available = append(g.available[:i], g.available[i+1:]...)
			return
		}
	}
}

// solidTilesNear returns the not yet destroyed tiles whose centers lie
// strictly within radius of pos
func (g *Game) solidTilesNear(pos Vec2, radius float64) []GridPos {
	var out []GridPos
	for _, t := range g.available {
		if Distance(pos, TileWorldPos(t)) < radius {
			out = append(out, t)
		}
	}
	return out
}

// checkFalls eliminates every alive player no longer on the map, then
// evaluates the outcome once. Players falling together leave no winner.
// Players in settling still have a knockback death check pending and are
// left to it.
func (g *Game) checkFalls(settling ...*Player) {
	if g.Phase() != PhaseActive {
		return
	}
	type fall struct {
		p       *Player
		onFront bool
	}
	var falls []fall
	for _, id := range g.order {
		p := g.players[id]
		if !p.Alive || slices.Contains(settling, p) {
			continue
		}
		if within, onFront := p.IsWithinMap(); !within {
			falls = append(falls, fall{p, onFront})
		}
	}
	if len(falls) == 0 {
		return
	}
	for _, f := range falls {
		f.p.eliminate(f.onFront)
	}
	g.checkWinner()
}

func (g *Game) alivePlayers() []*Player {
	var alive []*Player
	for _, id := range g.order {
		if p := g.players[id]; p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// checkWinner closes the match once fewer than two players are alive,
// announcing the survivor if there is exactly one. Before the match starts
// it only closes a lobby that has nobody left.
func (g *Game) checkWinner() {
	switch g.Phase() {
	case PhaseClosed:
		return
	case PhaseOpen:
		if len(g.alivePlayers()) == 0 && len(g.conns) == 0 {
			g.close()
		}
		return
	}
	alive := g.alivePlayers()
	if len(alive) >= 2 {
		return
	}
	if len(alive) == 1 && !g.winnerSent {
		g.winnerSent = true
		g.broadcast(EvtPlayerWon, alive[0].ID)
		g.log().WithField("winner", alive[0].ID).Info("match won")
	}
	g.track(StatMatchEnd)
	g.close()
}

func (g *Game) handleAngleChange(c AngleChange) {
	p := g.players[c.ConnID]
	if p == nil || !p.Alive {
		return
	}
	switch c.Angle {
	case AimUp, AimMiddle, AimDown:
	default:
		return
	}
	if c.Facing != FacingLeft && c.Facing != FacingRight {
		return
	}
	p.Aim = c.Angle
	p.Facing = c.Facing
	g.broadcast(EvtAngleChange, AngleChangedMsg{SocketID: p.ID, Angle: p.Aim, Direction: p.Facing})
}

func (g *Game) handleLeave(connID string) {
	if _, ok := g.conns[connID]; !ok {
		return
	}
	delete(g.conns, connID)

	p := g.players[connID]
	if p == nil {
		if g.Phase() == PhaseOpen && len(g.conns) == 0 && len(g.alivePlayers()) == 0 {
			g.close()
		}
		return
	}
	p.disconnect()
	if g.Phase() == PhaseOpen {
		// free the slot for the next registration
		delete(g.players, p.ID)
		for i, id := range g.order {
			if id == p.ID {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
		g.playerCount.Store(int32(len(g.players)))
	}
	g.broadcast(EvtLeave, p.ID)
	g.log().WithField("player", p.ID).Info("player left")
	g.checkWinner()
}

// close ends the match: pending tasks are dropped, connections are closed
// and the registry forgets the id.
func (g *Game) close() {
	if g.Phase() == PhaseClosed {
		return
	}
	g.phase.Store(int32(PhaseClosed))
	g.scheduler.Clear()
	if g.registry != nil {
		g.registry.Close(g.ID, g)
	}
	for id, c := range g.conns {
		c.Close()
		delete(g.conns, id)
	}
	g.track(StatLobbyClose)
	entry := g.log()
	if !g.startedAt.IsZero() {
		entry = entry.WithField("duration", time.Since(g.startedAt).Round(time.Millisecond))
	}
	entry.Info("lobby closed")
}

func (g *Game) broadcast(t string, payload any) {
	env := Envelope{T: t, Data: payload}
	for _, c := range g.conns {
		c.Send(env)
	}
}

func (g *Game) track(evt string) {
	if g.analytics != nil {
		g.analytics.Track(evt)
	}
}

func (g *Game) log() *logrus.Entry {
	return lobbyLog(g.ID)
}
