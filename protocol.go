package main

// Client -> Server event types
const (
	EvtRegister    = "register"
	EvtMove        = "playermove"
	EvtAngleChange = "anglechange"
	EvtRocketShot  = "rocketshot"
)

// Server -> Client event types
const (
	EvtID            = "id"
	EvtStartGame     = "startgame"
	EvtPlayerDied    = "playerdied"
	EvtPlayerWon     = "playerwon"
	EvtTileDestroyed = "tiledestroyed"
	EvtRocketExplode = "rocketexplode"
	EvtLeave         = "leave"
	// EvtMove, EvtAngleChange and EvtRocketShot are echoed back as well
)

// Direction is a movement or knockback direction. The zero value means none.
type Direction string

const (
	DirNone  Direction = ""
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Valid reports whether d is one of the four movement directions
func (d Direction) Valid() bool {
	return d == DirUp || d == DirDown || d == DirLeft || d == DirRight
}

// Horizontal reports whether d moves along the x axis
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

// Facing is the side a player looks at
type Facing string

const (
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// AimAngle is one of the three discrete handrocket angles
type AimAngle string

const (
	AimUp     AimAngle = "up"
	AimMiddle AimAngle = "middle"
	AimDown   AimAngle = "down"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string `json:"t"`
	Data any    `json:"d,omitempty"`
}

// InEnvelope is a decoded incoming message whose payload is still encoded
type InEnvelope struct {
	T string
	D []byte
}

// AngleChangeMsg is sent by a client when its aim or facing changes
type AngleChangeMsg struct {
	Angle     AimAngle `json:"angle"`
	Direction Facing   `json:"direction"`
}

// StartGameMsg tells clients whether the match has started
type StartGameMsg struct {
	Start   bool                   `json:"start"`
	Level   *LevelData             `json:"level,omitempty"`
	Players map[string]PlayerEntry `json:"players,omitempty"`
}

// LevelData is the layout sent with the start event
type LevelData struct {
	Chunks []GridPos `json:"chunks"`
}

// PlayerEntry describes one player in the start event
type PlayerEntry struct {
	Name      string `json:"name"`
	Pos       Vec2   `json:"pos"`
	Direction Facing `json:"direction"`
}

// PlayerMoveMsg syncs a player's position
type PlayerMoveMsg struct {
	SocketID string `json:"socketId"`
	Pos      Vec2   `json:"pos"`
}

// PlayerDiedMsg announces a death
type PlayerDiedMsg struct {
	SocketID     string `json:"socketId"`
	FellOffFront bool   `json:"fellOffFront"`
}

// TileDestroyedMsg announces a tile destruction. Instant tiles skip the
// client-side warning flash.
type TileDestroyedMsg struct {
	Pos     GridPos `json:"pos"`
	Instant bool    `json:"instant"`
}

// AngleChangedMsg echoes a player's aim to every client
type AngleChangedMsg struct {
	SocketID  string   `json:"socketId"`
	Angle     AimAngle `json:"angle"`
	Direction Facing   `json:"direction"`
}

// RocketShotMsg lets clients spawn a rocket and its muzzle flash
type RocketShotMsg struct {
	OwnerSocketID string `json:"ownerSocketId"`
	Direction     Vec2   `json:"direction"`
	Pos           Vec2   `json:"pos"`
	InstanceID    uint32 `json:"instanceId"`
}

// FindLobbyResponse is the matchmaking reply. A nil Lobby means no capacity.
type FindLobbyResponse struct {
	Lobby *string `json:"lobby"`
}

// LobbyInfo is used in the lobby list
type LobbyInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	State   string `json:"state"`
}
