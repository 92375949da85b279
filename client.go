package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

var ErrUnknownEvent = errors.New("unknown event")

// Client is one websocket connection inside a lobby
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	codec      Codec
	game       *Game
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, codec Codec, remoteAddr string) *Client {
	return &Client{
		id:         GenerateID(),
		hub:        hub,
		conn:       conn,
		codec:      codec,
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
		remoteAddr: remoteAddr,
	}
}

func (c *Client) log() *logrus.Entry {
	e := logger.WithField("conn", c.id).WithField("addr", c.remoteAddr)
	if c.game != nil {
		e = e.WithField("lobby", c.game.ID)
	}
	return e
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.Detach(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().WithError(err).Warn("ws read error")
			}
			return
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log().Warn("rate limit exceeded, disconnecting")
			return
		}

		if err := c.handleMessage(message); err != nil {
			if errors.Is(err, ErrLobbyClosed) {
				c.log().Debug("lobby closed, disconnecting")
				return
			}
			c.log().WithError(err).Debug("dropped message")
		}
	}
}

// WritePump writes queued frames. After Close it flushes what is queued and
// sends a close frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := c.codec.FrameType()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			for {
				select {
				case message := <-c.send:
					if err := c.conn.WriteMessage(frameType, message); err != nil {
						return
					}
				default:
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// Send encodes and queues an envelope. It never blocks: frames for a slow
// or closed client are dropped.
func (c *Client) Send(env Envelope) {
	select {
	case <-c.done:
		return
	default:
	}
	data, err := c.codec.Encode(env)
	if err != nil {
		c.log().WithError(err).Error("encode error")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log().WithField("event", env.T).Debug("send buffer full, dropping")
	}
}

// Close asks the write pump to flush and close the connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// handleMessage decodes one frame and posts the matching command
func (c *Client) handleMessage(raw []byte) error {
	env, err := c.codec.DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	if c.game == nil {
		return ErrLobbyNotFound
	}

	var cmd any
	switch env.T {
	case EvtRegister:
		// a missing or malformed name registers under the default one
		var name string
		if err := c.codec.DecodePayload(env.D, &name); err != nil {
			c.log().WithError(err).Debug("register: bad name payload")
			name = ""
		}
		cmd = Register{ConnID: c.id, Name: name}
	case EvtMove:
		var dir Direction
		if err := c.codec.DecodePayload(env.D, &dir); err != nil {
			return fmt.Errorf("playermove: %w", err)
		}
		if !dir.Valid() {
			return fmt.Errorf("playermove: invalid direction %q", dir)
		}
		cmd = Move{ConnID: c.id, Dir: dir}
	case EvtAngleChange:
		var msg AngleChangeMsg
		if err := c.codec.DecodePayload(env.D, &msg); err != nil {
			return fmt.Errorf("anglechange: %w", err)
		}
		cmd = AngleChange{ConnID: c.id, Angle: msg.Angle, Facing: msg.Direction}
	case EvtRocketShot:
		cmd = FireRocket{ConnID: c.id}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.T)
	}

	if !c.game.Post(cmd) {
		return ErrLobbyClosed
	}
	return nil
}
