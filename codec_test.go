package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodecByName(t *testing.T) {
	if CodecByName("msgpack").Name() != "msgpack" {
		t.Error("expected msgpack codec")
	}
	if CodecByName("").Name() != "json" || CodecByName("xml").Name() != "json" {
		t.Error("unknown names should fall back to json")
	}
	if CodecByName("json").FrameType() != websocket.TextMessage {
		t.Error("json should use text frames")
	}
	if CodecByName("msgpack").FrameType() != websocket.BinaryMessage {
		t.Error("msgpack should use binary frames")
	}
}

func TestJSONCodecDecode(t *testing.T) {
	c := CodecByName("json")
	env, err := c.DecodeEnvelope([]byte(`{"t":"anglechange","d":{"angle":"up","direction":"right"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.T != EvtAngleChange {
		t.Errorf("expected anglechange, got %s", env.T)
	}
	var msg AngleChangeMsg
	if err := c.DecodePayload(env.D, &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.Angle != AimUp || msg.Direction != FacingRight {
		t.Errorf("unexpected payload %+v", msg)
	}
}

func TestJSONCodecEncode(t *testing.T) {
	raw, err := CodecByName("json").Encode(Envelope{T: EvtPlayerDied, Data: PlayerDiedMsg{SocketID: "abc", FellOffFront: true}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	d := m["d"].(map[string]any)
	if m["t"] != EvtPlayerDied || d["socketId"] != "abc" || d["fellOffFront"] != true {
		t.Errorf("unexpected wire shape %s", raw)
	}
}

func TestMsgpackCodecDecode(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(map[string]any{"t": EvtMove, "d": "left"}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	c := CodecByName("msgpack")
	env, err := c.DecodeEnvelope(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var dir Direction
	if err := c.DecodePayload(env.D, &dir); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if env.T != EvtMove || dir != DirLeft {
		t.Errorf("expected playermove left, got %s %s", env.T, dir)
	}
}

func TestMsgpackCodecUsesJSONNames(t *testing.T) {
	raw, err := CodecByName("msgpack").Encode(Envelope{T: EvtTileDestroyed, Data: TileDestroyedMsg{Pos: GridPos{3, 4}, Instant: true}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	d, ok := m["d"].(map[string]any)
	if !ok || m["t"] != EvtTileDestroyed || d["instant"] != true {
		t.Errorf("unexpected msgpack shape %v", m)
	}
}

func TestCodecEmptyFrame(t *testing.T) {
	for _, name := range []string{"json", "msgpack"} {
		if _, err := CodecByName(name).DecodeEnvelope(nil); !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("%s: expected ErrEmptyFrame, got %v", name, err)
		}
	}
}
