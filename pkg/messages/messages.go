package messages

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/abennett/roll/pkg"
)

var (
	ErrMessageInvalid     = errors.New("message was invalid")
	ErrUnknownMessageType = errors.New("unknown message type")
)

type Type int

const (
	StateMsgType Type = iota
	DoneRequestType
	RollRequestType
)

type Message struct {
	_msgpack struct{} `msgpack:",as_array"` //nolint:unused
	Type     Type     `msgpack:"type"`
	Version  string   `msgpack:"version"`
	Payload  any
}

func (m *Message) UnmarshalMsgpack(b []byte) error {
	decoder := msgpack.NewDecoder(bytes.NewReader(b))
	l, err := decoder.DecodeArrayLen()
	if err != nil {
		return err
	}
	if l != 3 {
		return fmt.Errorf("%w: expected 3 elements, got %d", ErrMessageInvalid, l)
	}
	t, err := decoder.DecodeInt()
	if err != nil {
		return err
	}
	m.Type = Type(t)

	if err = decoder.Skip(); err != nil {
		return err
	}

	switch m.Type {
	case DoneRequestType:
		var done DoneRequest
		if err = decoder.Decode(&done); err != nil {
			return err
		}
		m.Payload = done
	case StateMsgType:
		var room RoomState
		if err = decoder.Decode(&room); err != nil {
			return err
		}
		m.Payload = room
	case RollRequestType:
		var roll RollRequest
		if err = decoder.Decode(&roll); err != nil {
			return err
		}
		m.Payload = roll
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMessageType, t)
	}
	return nil
}

type RoomState struct {
	Version  int          `msgpack:"version"`
	Name     string       `msgpack:"name"`
	Notation string       `msgpack:"notation"`
	Rolls    []RollResult `msgpack:"rolls"`
}

type RollRequest struct {
	User string `msgpack:"user"`
}

// RollResult pairs a user with the full evaluation breakdown of their roll,
// so clients can render dropped dice distinctly from kept ones.
type RollResult struct {
	User   string     `msgpack:"user"`
	Roll   pkg.Result `msgpack:"roll"`
	IsDone bool       `msgpack:"is_done"`
}

type DoneRequest struct {
	User string `msgpack:"user"`
}
