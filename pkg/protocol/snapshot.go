package protocol

import "fmt"

// Entry is one element of a snapshot. Key is empty for lists.
type Entry struct {
	Key   string `json:"key,omitempty"`
	Value any    `json:"value"`
}

// Snapshot is the full content of a collection at sequence number Seq.
type Snapshot struct {
	Collection string  `json:"collection"`
	Shape      Shape   `json:"shape"`
	Seq        uint64  `json:"seq"`
	Entries    []Entry `json:"entries"`
}

// Values returns the entry values in order.
func (s *Snapshot) Values() []any {
	values := make([]any, len(s.Entries))
	for i, e := range s.Entries {
		values[i] = e.Value
	}
	return values
}

// EncodeSnapshot encodes a Snapshot to bytes.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	e := NewEncoder()
	e.WriteString(s.Collection)
	e.WriteByte(byte(s.Shape))
	e.WriteUvarint(s.Seq)
	e.WriteUvarint(uint64(len(s.Entries)))
	for i, entry := range s.Entries {
		if s.Shape == ShapeMap {
			e.WriteString(entry.Key)
		}
		if err := e.WriteValue(entry.Value); err != nil {
			return nil, fmt.Errorf("protocol: snapshot entry %d: %w", i, err)
		}
	}
	return e.Bytes(), nil
}

// DecodeSnapshot decodes a Snapshot from bytes.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	d := NewDecoder(data)
	var s Snapshot
	var err error

	if s.Collection, err = d.ReadString(); err != nil {
		return nil, err
	}
	shape, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	s.Shape = Shape(shape)
	if s.Shape != ShapeList && s.Shape != ShapeMap {
		return nil, ErrInvalidShape
	}
	if s.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	s.Entries = make([]Entry, count)
	for i := range s.Entries {
		if s.Shape == ShapeMap {
			if s.Entries[i].Key, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		if s.Entries[i].Value, err = d.ReadValue(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// NewSnapshotFrame encodes s into a FrameSnapshot with the given flags.
func NewSnapshotFrame(s *Snapshot, flags FrameFlags) (*Frame, error) {
	payload, err := EncodeSnapshot(s)
	if err != nil {
		return nil, err
	}
	return &Frame{Type: FrameSnapshot, Flags: flags, Payload: payload}, nil
}
