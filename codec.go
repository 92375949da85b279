package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrEmptyFrame = errors.New("empty frame")

// Codec encodes outgoing envelopes and decodes incoming ones for one
// connection. The payload of an incoming envelope stays encoded until the
// handler knows its type.
type Codec interface {
	Name() string
	Encode(env Envelope) ([]byte, error)
	DecodeEnvelope(data []byte) (InEnvelope, error)
	DecodePayload(raw []byte, v any) error
	FrameType() int
}

// CodecByName returns the codec for a query value. Unknown names get JSON.
func CodecByName(name string) Codec {
	if name == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

type jsonInEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

func (jsonCodec) Name() string   { return "json" }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (jsonCodec) DecodeEnvelope(data []byte) (InEnvelope, error) {
	if len(data) == 0 {
		return InEnvelope{}, ErrEmptyFrame
	}
	var env jsonInEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return InEnvelope{}, fmt.Errorf("decode json envelope: %w", err)
	}
	return InEnvelope{T: env.T, D: env.D}, nil
}

func (jsonCodec) DecodePayload(raw []byte, v any) error {
	if len(raw) == 0 {
		return ErrEmptyFrame
	}
	return json.Unmarshal(raw, v)
}

// msgpackCodec reuses the json field names so both codecs share one schema
type msgpackCodec struct{}

type msgpackInEnvelope struct {
	T string             `json:"t"`
	D msgpack.RawMessage `json:"d,omitempty"`
}

func (msgpackCodec) Name() string   { return "msgpack" }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c msgpackCodec) DecodeEnvelope(data []byte) (InEnvelope, error) {
	if len(data) == 0 {
		return InEnvelope{}, ErrEmptyFrame
	}
	var env msgpackInEnvelope
	if err := c.unmarshal(data, &env); err != nil {
		return InEnvelope{}, fmt.Errorf("decode msgpack envelope: %w", err)
	}
	return InEnvelope{T: env.T, D: env.D}, nil
}

func (c msgpackCodec) DecodePayload(raw []byte, v any) error {
	if len(raw) == 0 {
		return ErrEmptyFrame
	}
	return c.unmarshal(raw, v)
}

func (msgpackCodec) unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
