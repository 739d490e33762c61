package protocol

import (
	"errors"
	"fmt"
)

// ControlType identifies the type of control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x20
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// CloseReason indicates why a feed is being closed.
type CloseReason uint8

const (
	CloseNormal         CloseReason = 0x00
	CloseGoingAway      CloseReason = 0x01
	CloseServerShutdown CloseReason = 0x02
	CloseQueueOverflow  CloseReason = 0x03 // Client fell too far behind
	CloseError          CloseReason = 0x04
)

// String returns the string representation of the close reason.
func (cr CloseReason) String() string {
	switch cr {
	case CloseNormal:
		return "Normal"
	case CloseGoingAway:
		return "GoingAway"
	case CloseServerShutdown:
		return "ServerShutdown"
	case CloseQueueOverflow:
		return "QueueOverflow"
	case CloseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PingPong is the payload for Ping and Pong messages.
type PingPong struct {
	Timestamp uint64 // Unix milliseconds
}

// CloseMessage is sent before a feed is closed.
type CloseMessage struct {
	Reason  CloseReason
	Message string
}

// ErrUnknownControl is returned for an unrecognized control type.
var ErrUnknownControl = errors.New("protocol: unknown control type")

// EncodeControl encodes a control message. payload must be a *PingPong for
// ping and pong, or a *CloseMessage for close.
func EncodeControl(ct ControlType, payload any) []byte {
	e := NewEncoder()
	e.WriteByte(byte(ct))
	switch p := payload.(type) {
	case *PingPong:
		e.WriteUvarint(p.Timestamp)
	case *CloseMessage:
		e.WriteByte(byte(p.Reason))
		e.WriteString(p.Message)
	}
	return e.Bytes()
}

// DecodeControl decodes a control message, returning its type and payload.
func DecodeControl(data []byte) (ControlType, any, error) {
	d := NewDecoder(data)
	b, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ct := ControlType(b)

	switch ct {
	case ControlPing, ControlPong:
		ts, err := d.ReadUvarint()
		if err != nil {
			return 0, nil, err
		}
		return ct, &PingPong{Timestamp: ts}, nil
	case ControlClose:
		reason, err := d.ReadByte()
		if err != nil {
			return 0, nil, err
		}
		msg, err := d.ReadString()
		if err != nil {
			return 0, nil, err
		}
		return ct, &CloseMessage{Reason: CloseReason(reason), Message: msg}, nil
	default:
		return 0, nil, fmt.Errorf("%w: 0x%02x", ErrUnknownControl, b)
	}
}

// NewControlFrame encodes a control message into a FrameControl.
func NewControlFrame(ct ControlType, payload any) *Frame {
	return NewFrame(FrameControl, EncodeControl(ct, payload))
}
