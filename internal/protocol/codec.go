package protocol

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is one websocket text frame: {"event": name, "data": payload}.
type Envelope struct {
	Event string              `json:"event"`
	Data  jsoniter.RawMessage `json:"data"`
}

func Encode(event string, payload any) ([]byte, error) {
	if event == "" {
		return nil, errors.New("encode: empty event name")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("decode: empty frame")
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, errors.New("decode: missing event name")
	}
	return env, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("empty payload for %q", env.Event)
	}
	err := json.Unmarshal(env.Data, &out)
	return out, err
}
