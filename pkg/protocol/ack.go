package protocol

// OpMessage carries a client operation. Body is the JSON encoding of one
// operation or an array of them; ID is echoed back in the Ack or error.
type OpMessage struct {
	ID   uint64
	Body []byte
}

// EncodeOp encodes an OpMessage to bytes.
func EncodeOp(op *OpMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(op.ID)
	e.WriteLenBytes(op.Body)
	return e.Bytes()
}

// DecodeOp decodes an OpMessage from bytes.
func DecodeOp(data []byte) (*OpMessage, error) {
	d := NewDecoder(data)
	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	body, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	return &OpMessage{ID: id, Body: body}, nil
}

// Ack acknowledges an OpMessage.
type Ack struct {
	ID      uint64 // ID of the acknowledged OpMessage
	Applied uint64 // Number of operations applied
}

// EncodeAck encodes an Ack to bytes.
func EncodeAck(ack *Ack) []byte {
	e := NewEncoder()
	e.WriteUvarint(ack.ID)
	e.WriteUvarint(ack.Applied)
	return e.Bytes()
}

// DecodeAck decodes an Ack from bytes.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	applied, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Ack{ID: id, Applied: applied}, nil
}
