package protocol

import (
	"errors"
	"fmt"
)

// Kind identifies a collection event.
type Kind uint8

const (
	KindReset  Kind = 0x01
	KindAdd    Kind = 0x02
	KindUpdate Kind = 0x03
	KindRemove Kind = 0x04
	KindMove   Kind = 0x05 // Lists only
)

var kindNames = map[Kind]string{
	KindReset:  "reset",
	KindAdd:    "add",
	KindUpdate: "update",
	KindRemove: "remove",
	KindMove:   "move",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("protocol: unknown event kind %q", b)
}

// Shape distinguishes list collections from map collections.
type Shape uint8

const (
	ShapeList Shape = 0x01
	ShapeMap  Shape = 0x02
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeMap:
		return "map"
	default:
		return "unknown"
	}
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a shape name.
func (s *Shape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "list":
		*s = ShapeList
	case "map":
		*s = ShapeMap
	default:
		return fmt.Errorf("protocol: unknown shape %q", b)
	}
	return nil
}

// Event decoding errors.
var (
	ErrInvalidKind  = errors.New("protocol: invalid event kind")
	ErrInvalidShape = errors.New("protocol: invalid shape")
)

// Event is one collection notification.
//
// List events use Index (and To for moves); map events use Key. Value is
// the element the event concerns. Params is only set on updates.
type Event struct {
	Seq        uint64 `json:"seq"`
	Collection string `json:"collection"`
	Kind       Kind   `json:"kind"`
	Shape      Shape  `json:"shape"`
	Index      int    `json:"index"`
	To         int    `json:"to"`
	Key        string `json:"key,omitempty"`
	Value      any    `json:"value,omitempty"`
	Params     any    `json:"params,omitempty"`
}

// String returns a compact description of the event.
func (ev *Event) String() string {
	switch {
	case ev.Kind == KindReset:
		return fmt.Sprintf("#%d %s reset", ev.Seq, ev.Collection)
	case ev.Shape == ShapeMap:
		return fmt.Sprintf("#%d %s %s %s=%v", ev.Seq, ev.Collection, ev.Kind, ev.Key, ev.Value)
	case ev.Kind == KindMove:
		return fmt.Sprintf("#%d %s move %d->%d %v", ev.Seq, ev.Collection, ev.Index, ev.To, ev.Value)
	default:
		return fmt.Sprintf("#%d %s %s %d %v", ev.Seq, ev.Collection, ev.Kind, ev.Index, ev.Value)
	}
}

// EncodeEvent encodes an Event to bytes.
func EncodeEvent(ev *Event) ([]byte, error) {
	e := NewEncoder()
	if err := EncodeEventTo(e, ev); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// EncodeEventTo encodes an Event using the provided encoder.
func EncodeEventTo(e *Encoder, ev *Event) error {
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.Collection)
	e.WriteByte(byte(ev.Kind))
	e.WriteByte(byte(ev.Shape))
	e.WriteSvarint(int64(ev.Index))
	e.WriteSvarint(int64(ev.To))
	e.WriteString(ev.Key)
	if err := e.WriteValue(ev.Value); err != nil {
		return fmt.Errorf("protocol: event value: %w", err)
	}
	if err := e.WriteValue(ev.Params); err != nil {
		return fmt.Errorf("protocol: event params: %w", err)
	}
	return nil
}

// DecodeEvent decodes an Event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	return DecodeEventFrom(NewDecoder(data))
}

// DecodeEventFrom decodes an Event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	var ev Event
	var err error

	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Collection, err = d.ReadString(); err != nil {
		return nil, err
	}
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.Kind = Kind(kind)
	if _, ok := kindNames[ev.Kind]; !ok {
		return nil, ErrInvalidKind
	}
	shape, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.Shape = Shape(shape)
	if ev.Shape != ShapeList && ev.Shape != ShapeMap {
		return nil, ErrInvalidShape
	}
	index, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	to, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	ev.Index, ev.To = int(index), int(to)
	if ev.Key, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Value, err = d.ReadValue(); err != nil {
		return nil, err
	}
	if ev.Params, err = d.ReadValue(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// NewEventFrame encodes ev into a FrameEvent.
func NewEventFrame(ev *Event) (*Frame, error) {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return nil, err
	}
	return NewFrame(FrameEvent, payload), nil
}
