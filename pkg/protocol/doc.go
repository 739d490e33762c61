// Package protocol implements the binary wire protocol used to publish live
// collections.
//
// A server streams the change events of a collection to its clients, and
// clients send operations back. Every message is a frame with a 6-byte
// header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameSnapshot (0x00): Server → Client full collection content
//   - FrameEvent (0x01): Server → Client collection event
//   - FrameOp (0x02): Client → Server operation
//   - FrameControl (0x03): Ping, pong and close
//   - FrameAck (0x04): Server → Client operation acknowledgment
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: unsigned integers (sequence numbers, lengths)
//   - ZigZag: signed integers (list indices)
//   - Length-prefixed: strings and byte arrays
//   - Values: collection values and update params are dynamic, so they are
//     encoded as protobuf google.protobuf.Value messages (structpb)
//
// Events and snapshots also carry JSON tags so tools can print them as
// JSON lines.
//
// # Events
//
// An event is the wire form of one list or map notification:
//
//	[Seq: varint][Collection: string][Kind: byte][Shape: byte]
//	[Index: svarint][To: svarint][Key: string][Value][Params]
//
// Sequence numbers are assigned per collection by the sink that observes
// it, starting at 1. A snapshot carries the sequence number of the last
// event it reflects, so a client can resume from there.
package protocol
